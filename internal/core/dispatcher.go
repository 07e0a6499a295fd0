package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"tunegram/internal/chat"
	"tunegram/internal/flood"
	"tunegram/internal/i18n"
	"tunegram/pkg/text"
)

const (
	// CallbackTrackPrefix marks inline-button payloads carrying a track id
	CallbackTrackPrefix = "track_"
	// ButtonLabelMaxLen is the chat transport's inline-button label limit
	ButtonLabelMaxLen = 64
)

// Metrics records dispatch outcomes; implemented by the observability server.
type Metrics interface {
	RecordMessage(msgType, status string)
	RecordSearch(status string)
	RecordAcquisition(outcome string, duration time.Duration)
}

// Dispatcher routes inbound chat events to the access policy, resolver and
// acquisition pipeline, and renders all user-facing replies. One event is
// processed to completion per handler invocation; the only state shared
// across events is the pair of long-lived catalog clients.
type Dispatcher struct {
	config     *Config
	frontend   chat.Frontend
	fullClient CatalogClient
	demoClient CatalogClient
	policy     *AccessPolicy
	resolver   *Resolver
	pipeline   *Pipeline
	notifier   *Notifier
	floodgate  *flood.Floodgate
	parser     *text.Parser
	localizer  *i18n.Localizer
	metrics    Metrics
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher over the provided frontend and the two
// tier-specific catalog clients.
func NewDispatcher(
	config *Config,
	frontend chat.Frontend,
	fullClient, demoClient CatalogClient,
	notifier *Notifier,
	metrics Metrics,
	logger *zap.Logger,
) *Dispatcher {
	localizer := i18n.NewLocalizer(config.App.Language)

	return &Dispatcher{
		config:     config,
		frontend:   frontend,
		fullClient: fullClient,
		demoClient: demoClient,
		policy:     NewAccessPolicy(config.Access.AllowedUsers),
		resolver:   NewResolver(config.App.SearchLimit),
		pipeline:   NewPipeline(&config.App, localizer, logger.Named("pipeline")),
		notifier:   notifier,
		floodgate:  flood.New(config.App.FloodLimitPerMinute),
		parser:     text.NewParser(config.Catalog.LinkHost),
		localizer:  localizer,
		metrics:    metrics,
		logger:     logger,
	}
}

// Start initializes the frontend, announces startup to the operator and
// blocks processing events until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.logger.Info("Starting dispatcher")

	if err := d.frontend.Start(ctx); err != nil {
		return fmt.Errorf("failed to start chat frontend: %w", err)
	}

	d.notifier.NotifyOperator(ctx, d.localizer.T("operator.startup"))

	return d.frontend.Listen(ctx, d.handleEvent)
}

// handleEvent is the dispatch table keyed by inbound event kind.
func (d *Dispatcher) handleEvent(ctx context.Context, event *chat.Event) {
	switch event.Kind {
	case chat.EventCommand:
		d.handleCommand(ctx, event)
	case chat.EventText:
		d.handleText(ctx, event)
	case chat.EventCallback:
		d.handleCallback(ctx, event)
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, event *chat.Event) {
	switch event.Command {
	case "start":
		d.handleStart(ctx, event)
	case "help":
		d.reply(ctx, event.ChatID, d.localizer.T("cmd.help"))
		d.metrics.RecordMessage("command", "ok")
	case "myid":
		d.handleMyID(ctx, event)
	default:
		d.logger.Debug("Ignoring unknown command",
			zap.String("command", event.Command),
			zap.Int64("senderID", event.SenderID))
	}
}

func (d *Dispatcher) handleStart(ctx context.Context, event *chat.Event) {
	d.reply(ctx, event.ChatID, d.localizer.T("cmd.start", event.SenderName))
	d.metrics.RecordMessage("command", "ok")

	// The operator's own first use is not news.
	if event.SenderID == d.notifier.OperatorID() {
		return
	}

	username := event.SenderUsername
	if username == "" {
		username = d.localizer.T("operator.no_username")
	}
	d.notifier.NotifyOperator(ctx,
		d.localizer.T("operator.new_user", event.SenderID, event.SenderName, username))
}

// handleMyID is never access-gated or flood-limited.
func (d *Dispatcher) handleMyID(ctx context.Context, event *chat.Event) {
	d.reply(ctx, event.ChatID, d.localizer.T("cmd.myid", event.SenderID))
	d.metrics.RecordMessage("command", "ok")
}

func (d *Dispatcher) handleText(ctx context.Context, event *chat.Event) {
	msgText := d.parser.Normalize(event.Text)

	// Raw "/myid" text bypasses command parsing and every gate.
	if msgText == "/myid" {
		d.handleMyID(ctx, event)
		return
	}

	if !d.floodgate.CheckMessage(event.ChatID, event.SenderID) {
		d.logger.Warn("Message blocked by flood gate",
			zap.Int64("senderID", event.SenderID))
		d.reply(ctx, event.ChatID, d.localizer.T("flood.limited"))
		d.metrics.RecordMessage("text", "flood_limited")
		return
	}

	if d.parser.ContainsCatalogLink(msgText) {
		d.handleCatalogLink(ctx, event, msgText)
		return
	}

	d.handleSearch(ctx, event, msgText)
}

func (d *Dispatcher) handleCatalogLink(ctx context.Context, event *chat.Event, msgText string) {
	d.reply(ctx, event.ChatID, d.localizer.T("acquire.preparing"))

	trackID, err := d.resolver.ExtractTrackID(d.parser.FirstURL(msgText))
	if err != nil {
		d.logger.Warn("Failed to extract track id from link",
			zap.String("text", msgText),
			zap.Error(err))
		d.reply(ctx, event.ChatID, d.localizer.T("error.unsupported_link"))
		d.metrics.RecordMessage("link", "unsupported")
		return
	}

	d.metrics.RecordMessage("link", "ok")
	d.acquire(ctx, event, trackID)
}

func (d *Dispatcher) handleSearch(ctx context.Context, event *chat.Event, query string) {
	d.reply(ctx, event.ChatID, d.localizer.T("search.progress", query))

	client := d.clientFor(event.SenderID)
	tracks, err := d.resolver.SearchTracks(ctx, client, query)
	if err != nil {
		d.logger.Warn("Catalog search failed",
			zap.String("query", query),
			zap.Error(err))
		d.reply(ctx, event.ChatID, d.localizer.T("search.failed"))
		d.metrics.RecordSearch("error")
		return
	}
	if len(tracks) == 0 {
		d.reply(ctx, event.ChatID, d.localizer.T("search.no_matches"))
		d.metrics.RecordSearch("no_matches")
		return
	}

	choices := make([]chat.Choice, 0, len(tracks))
	for _, track := range tracks {
		choices = append(choices, chat.Choice{
			Label: text.TruncateLabel(FormatCandidateLabel(&track), ButtonLabelMaxLen),
			Data:  CallbackTrackPrefix + track.ID,
		})
	}

	if err := d.frontend.SendChoices(ctx, event.ChatID, d.localizer.T("search.choose"), choices); err != nil {
		d.logger.Error("Failed to send search results", zap.Error(err))
		d.metrics.RecordSearch("error")
		return
	}
	d.metrics.RecordSearch("ok")
}

func (d *Dispatcher) handleCallback(ctx context.Context, event *chat.Event) {
	if !strings.HasPrefix(event.Data, CallbackTrackPrefix) {
		d.logger.Debug("Ignoring unknown callback payload",
			zap.String("data", event.Data))
		return
	}
	trackID := strings.TrimPrefix(event.Data, CallbackTrackPrefix)

	if !d.policy.IsAllowed(event.SenderID) {
		d.reply(ctx, event.ChatID, d.localizer.T("demo.notice"))
	}

	d.reply(ctx, event.ChatID, d.localizer.T("acquire.preparing"))
	d.acquire(ctx, event, trackID)
}

// acquire runs the pipeline for the sender's tier and converts the error
// kind into user-facing text.
func (d *Dispatcher) acquire(ctx context.Context, event *chat.Event, trackID string) {
	client := d.clientFor(event.SenderID)
	sink := &frontendAudioSink{frontend: d.frontend, chatID: event.ChatID}

	start := time.Now()
	err := d.pipeline.Acquire(ctx, client, trackID, sink)
	d.metrics.RecordAcquisition(acquisitionOutcome(err), time.Since(start))

	if err == nil {
		return
	}

	d.logger.Warn("Acquisition failed",
		zap.String("trackID", trackID),
		zap.Int64("senderID", event.SenderID),
		zap.String("tier", d.policy.Tier(event.SenderID).String()),
		zap.Error(err))
	d.reply(ctx, event.ChatID, d.localizer.T(acquisitionErrorKey(err)))
}

// clientFor selects the catalog client by the sender's permission tier.
func (d *Dispatcher) clientFor(senderID int64) CatalogClient {
	if d.policy.Tier(senderID) == TierFull {
		return d.fullClient
	}
	return d.demoClient
}

func (d *Dispatcher) reply(ctx context.Context, chatID, message string) {
	if _, err := d.frontend.SendText(ctx, chatID, message); err != nil {
		d.logger.Error("Failed to send reply",
			zap.String("chatID", chatID),
			zap.Error(err))
	}
}

// FormatCandidateLabel renders a search candidate as a button label:
// "title - artists (m:ss)".
func FormatCandidateLabel(track *Track) string {
	total := int(track.Duration.Seconds())
	return fmt.Sprintf("%s - %s (%d:%02d)", track.Title, track.Artist, total/60, total%60)
}

func acquisitionOutcome(err error) string {
	switch {
	case err == nil:
		return "delivered"
	case errors.Is(err, ErrTrackNotFound):
		return "not_found"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrNoSuitableVariant):
		return "no_variant"
	case errors.Is(err, ErrDownloadFailed):
		return "download_failed"
	case errors.Is(err, ErrDeliveryFailed):
		return "delivery_failed"
	default:
		return "error"
	}
}

func acquisitionErrorKey(err error) string {
	switch {
	case errors.Is(err, ErrTrackNotFound):
		return "error.not_found"
	case errors.Is(err, ErrUnavailable):
		return "error.unavailable"
	case errors.Is(err, ErrNoSuitableVariant):
		return "error.no_variant"
	case errors.Is(err, ErrDownloadFailed):
		return "error.download"
	case errors.Is(err, ErrDeliveryFailed):
		return "error.delivery"
	default:
		return "error.generic"
	}
}

// frontendAudioSink adapts a frontend chat to the pipeline's delivery sink.
type frontendAudioSink struct {
	frontend chat.Frontend
	chatID   string
}

func (s *frontendAudioSink) SendAudio(ctx context.Context, audio *Audio) error {
	return s.frontend.SendAudio(ctx, s.chatID, &chat.Audio{
		Path:      audio.Path,
		Title:     audio.Title,
		Performer: audio.Performer,
		Caption:   audio.Caption,
	})
}
