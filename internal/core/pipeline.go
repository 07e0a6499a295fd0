package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tunegram/internal/i18n"
)

// Pipeline runs the track acquisition flow: metadata fetch, quality
// selection, download to a temporary file and delivery with bounded retry.
// Temporary files are owned by a single Acquire call and removed on every
// exit path.
type Pipeline struct {
	downloadDir string
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
	localizer   *i18n.Localizer

	// wait blocks for the given duration or until ctx is done;
	// overridable in tests
	wait func(ctx context.Context, d time.Duration)
}

// NewPipeline creates an acquisition pipeline.
func NewPipeline(cfg *AppConfig, localizer *i18n.Localizer, logger *zap.Logger) *Pipeline {
	maxAttempts := cfg.DeliveryMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultDeliveryMaxAttempts
	}
	retryDelaySecs := cfg.DeliveryRetryDelaySecs
	if retryDelaySecs <= 0 {
		retryDelaySecs = DefaultDeliveryRetryDelaySecs
	}

	return &Pipeline{
		downloadDir: cfg.DownloadDir,
		maxAttempts: maxAttempts,
		retryDelay:  time.Duration(retryDelaySecs) * time.Second,
		logger:      logger,
		localizer:   localizer,
		wait:        waitOrDone,
	}
}

// BestVariant selects the mp3 variant with the highest bitrate. The second
// return value is false when no mp3 variant exists.
func BestVariant(variants []DownloadVariant) (DownloadVariant, bool) {
	var best DownloadVariant
	found := false
	for _, v := range variants {
		if v.Codec != CodecMP3 {
			continue
		}
		if !found || v.BitrateKbps > best.BitrateKbps {
			best = v
			found = true
		}
	}
	return best, found
}

// Acquire fetches the track, downloads its best mp3 variant and delivers it
// through sink. All failures are reported as one of the sentinel error
// kinds; the caller decides the user-facing wording.
func (p *Pipeline) Acquire(ctx context.Context, client CatalogClient, trackID string, sink AudioSender) error {
	track, err := client.GetTrack(ctx, trackID)
	if err != nil {
		p.logger.Warn("Track metadata fetch failed",
			zap.String("trackID", trackID),
			zap.Error(err))
		if errors.Is(err, ErrTrackNotFound) {
			return fmt.Errorf("%w: %s", ErrTrackNotFound, trackID)
		}
		return fmt.Errorf("track metadata fetch: %w", err)
	}

	variants, err := client.DownloadInfo(ctx, trackID)
	if err != nil {
		p.logger.Warn("Download info fetch failed",
			zap.String("trackID", trackID),
			zap.Error(err))
		return fmt.Errorf("download info fetch: %w", err)
	}
	if len(variants) == 0 {
		return fmt.Errorf("%w: %s", ErrUnavailable, trackID)
	}

	best, ok := BestVariant(variants)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuitableVariant, trackID)
	}

	// The uuid suffix keeps concurrent acquisitions of the same track from
	// racing on one filename.
	destPath := filepath.Join(p.downloadDir, fmt.Sprintf("%s-%s.mp3", trackID, uuid.NewString()))
	defer p.removeFile(destPath)

	if err := client.DownloadTrack(ctx, trackID, best, destPath); err != nil {
		p.logger.Error("Track download failed",
			zap.String("trackID", trackID),
			zap.String("codec", best.Codec),
			zap.Int("bitrateKbps", best.BitrateKbps),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	audio := &Audio{
		Path:      destPath,
		Title:     track.Title,
		Performer: track.Artist,
		Caption:   p.localizer.T("caption.track", track.Title, track.Artist),
	}

	if err := p.deliverWithRetry(ctx, sink, audio, trackID); err != nil {
		return err
	}

	p.logger.Info("Track delivered",
		zap.String("trackID", trackID),
		zap.String("title", track.Title),
		zap.Int("bitrateKbps", best.BitrateKbps))
	return nil
}

// deliverWithRetry sends the audio with up to maxAttempts total attempts.
// The wait before a retry starts at retryDelay and doubles each time.
func (p *Pipeline) deliverWithRetry(ctx context.Context, sink AudioSender, audio *Audio, trackID string) error {
	delay := p.retryDelay

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		lastErr = sink.SendAudio(ctx, audio)
		if lastErr == nil {
			return nil
		}

		if attempt < p.maxAttempts {
			p.logger.Warn("Audio delivery attempt failed, retrying",
				zap.String("trackID", trackID),
				zap.Int("attempt", attempt),
				zap.Duration("retryIn", delay),
				zap.Error(lastErr))
			p.wait(ctx, delay)
			delay *= 2
		}
	}

	p.logger.Error("Audio delivery failed after all attempts",
		zap.String("trackID", trackID),
		zap.Int("attempts", p.maxAttempts),
		zap.Error(lastErr))
	return fmt.Errorf("%w: %v", ErrDeliveryFailed, lastErr)
}

// removeFile deletes the temporary download. Missing files are fine
// (download may never have started); other errors are logged only.
func (p *Pipeline) removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("Failed to remove temporary file",
			zap.String("path", path),
			zap.Error(err))
	}
}

func waitOrDone(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
