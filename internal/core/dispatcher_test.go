package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"tunegram/internal/chat"
	"tunegram/internal/flood"
	"tunegram/internal/i18n"
)

// fakeFrontend records everything the dispatcher sends.
type fakeFrontend struct {
	texts   []sentText
	choices []sentChoices
	audio   []string // chat ids that received audio
}

type sentText struct {
	chatID string
	text   string
}

type sentChoices struct {
	chatID  string
	text    string
	choices []chat.Choice
}

func (f *fakeFrontend) Start(_ context.Context) error { return nil }

func (f *fakeFrontend) Listen(_ context.Context, _ func(ctx context.Context, event *chat.Event)) error {
	return nil
}

func (f *fakeFrontend) SendText(_ context.Context, chatID, text string) (string, error) {
	f.texts = append(f.texts, sentText{chatID: chatID, text: text})
	return "1", nil
}

func (f *fakeFrontend) SendChoices(_ context.Context, chatID, text string, choices []chat.Choice) error {
	f.choices = append(f.choices, sentChoices{chatID: chatID, text: text, choices: choices})
	return nil
}

func (f *fakeFrontend) SendAudio(_ context.Context, chatID string, _ *chat.Audio) error {
	f.audio = append(f.audio, chatID)
	return nil
}

func (f *fakeFrontend) textsTo(chatID string) []string {
	var out []string
	for _, st := range f.texts {
		if st.chatID == chatID {
			out = append(out, st.text)
		}
	}
	return out
}

// nopMetrics satisfies Metrics while counting acquisition outcomes.
type nopMetrics struct {
	acquisitions map[string]int
}

func newNopMetrics() *nopMetrics {
	return &nopMetrics{acquisitions: make(map[string]int)}
}

func (m *nopMetrics) RecordMessage(_, _ string) {}
func (m *nopMetrics) RecordSearch(_ string)     {}
func (m *nopMetrics) RecordAcquisition(outcome string, _ time.Duration) {
	m.acquisitions[outcome]++
}

func testDispatcher(t *testing.T, frontend *fakeFrontend, full, demo CatalogClient, allowed []int64) (*Dispatcher, *nopMetrics) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Access.AllowedUsers = allowed
	cfg.App.DownloadDir = t.TempDir()

	metrics := newNopMetrics()
	notifier := NewNotifier(frontend, 0, zap.NewNop())
	d := NewDispatcher(cfg, frontend, full, demo, notifier, metrics, zap.NewNop())
	d.pipeline.wait = func(_ context.Context, _ time.Duration) {}
	return d, metrics
}

func textEvent(senderID int64, msgText string) *chat.Event {
	return &chat.Event{
		Kind:     chat.EventText,
		ChatID:   "100",
		SenderID: senderID,
		Text:     msgText,
	}
}

func TestDispatcher_Search_SendsCandidateButtons(t *testing.T) {
	frontend := &fakeFrontend{}
	client := &fakeCatalog{searchResult: makeTracks(3)}
	d, _ := testDispatcher(t, frontend, client, client, nil)

	d.handleEvent(context.Background(), textEvent(1, "some song"))

	if len(frontend.choices) != 1 {
		t.Fatalf("SendChoices calls = %d, want 1", len(frontend.choices))
	}
	sent := frontend.choices[0]
	if len(sent.choices) != 3 {
		t.Fatalf("buttons = %d, want 3", len(sent.choices))
	}
	for i, choice := range sent.choices {
		if !strings.HasPrefix(choice.Data, CallbackTrackPrefix) {
			t.Errorf("button %d payload %q lacks the track prefix", i, choice.Data)
		}
		if n := len([]rune(choice.Label)); n > ButtonLabelMaxLen {
			t.Errorf("button %d label is %d runes, limit is %d", i, n, ButtonLabelMaxLen)
		}
	}
	// Labels carry title, artists and a mm:ss duration
	if want := "Song 1 - Artist (3:00)"; sent.choices[0].Label != want {
		t.Errorf("label = %q, want %q", sent.choices[0].Label, want)
	}
}

func TestDispatcher_Search_LongTitlesTruncated(t *testing.T) {
	frontend := &fakeFrontend{}
	client := &fakeCatalog{searchResult: []Track{{
		ID:       "1",
		Title:    strings.Repeat("Long Title ", 20),
		Artist:   "Artist",
		Duration: 3 * time.Minute,
	}}}
	d, _ := testDispatcher(t, frontend, client, client, nil)

	d.handleEvent(context.Background(), textEvent(1, "long"))

	if len(frontend.choices) != 1 || len(frontend.choices[0].choices) != 1 {
		t.Fatal("Expected a single button")
	}
	label := frontend.choices[0].choices[0].Label
	if n := len([]rune(label)); n != ButtonLabelMaxLen {
		t.Errorf("label length = %d runes, want %d", n, ButtonLabelMaxLen)
	}
	if !strings.HasSuffix(label, "...") {
		t.Errorf("truncated label %q should end with ellipsis", label)
	}
}

func TestDispatcher_Search_NoMatchesVsFailure(t *testing.T) {
	localizer := i18n.NewLocalizer(i18n.DefaultLanguage)

	t.Run("no matches", func(t *testing.T) {
		frontend := &fakeFrontend{}
		client := &fakeCatalog{}
		d, _ := testDispatcher(t, frontend, client, client, nil)

		d.handleEvent(context.Background(), textEvent(1, "nothing here"))

		texts := frontend.textsTo("100")
		if len(texts) == 0 || texts[len(texts)-1] != localizer.T("search.no_matches") {
			t.Errorf("last reply = %v, want the no-matches text", texts)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		frontend := &fakeFrontend{}
		client := &fakeCatalog{searchErr: errors.New("boom")}
		d, _ := testDispatcher(t, frontend, client, client, nil)

		d.handleEvent(context.Background(), textEvent(1, "anything"))

		texts := frontend.textsTo("100")
		if len(texts) == 0 || texts[len(texts)-1] != localizer.T("search.failed") {
			t.Errorf("last reply = %v, want the search-failed text", texts)
		}
	})
}

func TestDispatcher_CatalogLink_Acquires(t *testing.T) {
	frontend := &fakeFrontend{}
	client := workingCatalog("")
	d, metrics := testDispatcher(t, frontend, client, client, nil)

	d.handleEvent(context.Background(), textEvent(1, "https://music.example/track/42?from=share"))

	if len(frontend.audio) != 1 {
		t.Fatalf("audio deliveries = %d, want 1", len(frontend.audio))
	}
	if metrics.acquisitions["delivered"] != 1 {
		t.Errorf("delivered acquisitions = %d, want 1", metrics.acquisitions["delivered"])
	}
}

func TestDispatcher_CatalogLink_Unsupported(t *testing.T) {
	frontend := &fakeFrontend{}
	client := &fakeCatalog{}
	d, _ := testDispatcher(t, frontend, client, client, nil)

	d.handleEvent(context.Background(), textEvent(1, "https://music.example/album/111"))

	localizer := i18n.NewLocalizer(i18n.DefaultLanguage)
	texts := frontend.textsTo("100")
	if len(texts) == 0 || texts[len(texts)-1] != localizer.T("error.unsupported_link") {
		t.Errorf("last reply = %v, want the unsupported-link text", texts)
	}
	if client.downloadCalled {
		t.Error("Unsupported link must not trigger a download")
	}
}

func TestDispatcher_Callback_SelectsClientByTier(t *testing.T) {
	frontend := &fakeFrontend{}
	full := workingCatalog("")
	demo := workingCatalog("")
	d, _ := testDispatcher(t, frontend, full, demo, []int64{1})

	event := &chat.Event{
		Kind:     chat.EventCallback,
		ChatID:   "100",
		SenderID: 1,
		Data:     CallbackTrackPrefix + "42",
	}
	d.handleEvent(context.Background(), event)

	if !full.downloadCalled {
		t.Error("Allowed user should be served by the full-tier client")
	}
	if demo.downloadCalled {
		t.Error("Allowed user must not touch the demo client")
	}
}

func TestDispatcher_Callback_DemoTierNotice(t *testing.T) {
	frontend := &fakeFrontend{}
	full := workingCatalog("")
	demo := workingCatalog("")
	d, _ := testDispatcher(t, frontend, full, demo, []int64{1})

	event := &chat.Event{
		Kind:     chat.EventCallback,
		ChatID:   "100",
		SenderID: 2, // not on the allow-list
		Data:     CallbackTrackPrefix + "42",
	}
	d.handleEvent(context.Background(), event)

	localizer := i18n.NewLocalizer(i18n.DefaultLanguage)
	texts := frontend.textsTo("100")
	if len(texts) == 0 || texts[0] != localizer.T("demo.notice") {
		t.Errorf("first reply = %v, want the demo notice", texts)
	}
	if !demo.downloadCalled {
		t.Error("Demo user should still be served by the demo client")
	}
	if full.downloadCalled {
		t.Error("Demo user must not touch the full-tier client")
	}
}

func TestDispatcher_Callback_UnknownPayloadIgnored(t *testing.T) {
	frontend := &fakeFrontend{}
	client := &fakeCatalog{}
	d, _ := testDispatcher(t, frontend, client, client, nil)

	event := &chat.Event{
		Kind:     chat.EventCallback,
		ChatID:   "100",
		SenderID: 1,
		Data:     "something_else",
	}
	d.handleEvent(context.Background(), event)

	if len(frontend.texts) != 0 {
		t.Errorf("replies = %v, want none for unknown payloads", frontend.texts)
	}
}

func TestDispatcher_FloodGateBlocks(t *testing.T) {
	frontend := &fakeFrontend{}
	client := &fakeCatalog{searchResult: makeTracks(1)}
	d, _ := testDispatcher(t, frontend, client, client, nil)
	// Rebuild the gate with a tightened limit
	d.floodgate = flood.New(2)

	for i := 0; i < 3; i++ {
		d.handleEvent(context.Background(), textEvent(1, "query"))
	}

	localizer := i18n.NewLocalizer(i18n.DefaultLanguage)
	texts := frontend.textsTo("100")
	if len(texts) == 0 || texts[len(texts)-1] != localizer.T("flood.limited") {
		t.Errorf("last reply = %v, want the flood-limited text", texts)
	}
	if len(frontend.choices) != 2 {
		t.Errorf("searches served = %d, want 2", len(frontend.choices))
	}
}

func TestDispatcher_MyIDBypassesFloodGate(t *testing.T) {
	frontend := &fakeFrontend{}
	client := &fakeCatalog{}
	d, _ := testDispatcher(t, frontend, client, client, nil)
	d.floodgate = flood.New(1)

	d.handleEvent(context.Background(), textEvent(1, "first message"))
	// Second raw text hits the gate, but /myid must not
	d.handleEvent(context.Background(), textEvent(1, "/myid"))

	localizer := i18n.NewLocalizer(i18n.DefaultLanguage)
	texts := frontend.textsTo("100")
	want := localizer.T("cmd.myid", int64(1))
	found := false
	for _, msg := range texts {
		if msg == want {
			found = true
		}
	}
	if !found {
		t.Errorf("replies = %v, want a myid reply %q", texts, want)
	}
}

func TestDispatcher_StartCommand_NotifiesOperator(t *testing.T) {
	frontend := &fakeFrontend{}
	client := &fakeCatalog{}

	cfg := DefaultConfig()
	cfg.App.DownloadDir = t.TempDir()
	cfg.Access.OperatorID = 999

	notifier := NewNotifier(frontend, 999, zap.NewNop())
	d := NewDispatcher(cfg, frontend, client, client, notifier, newNopMetrics(), zap.NewNop())

	event := &chat.Event{
		Kind:           chat.EventCommand,
		ChatID:         "100",
		SenderID:       1,
		SenderName:     "Alice",
		SenderUsername: "alice",
		Command:        "start",
	}
	d.handleEvent(context.Background(), event)

	operatorTexts := frontend.textsTo("999")
	if len(operatorTexts) != 1 {
		t.Fatalf("operator notifications = %d, want 1", len(operatorTexts))
	}
	if !strings.Contains(operatorTexts[0], "alice") {
		t.Errorf("notification %q should mention the username", operatorTexts[0])
	}

	// The operator's own /start stays quiet
	frontend.texts = nil
	event.SenderID = 999
	d.handleEvent(context.Background(), event)
	if len(frontend.textsTo("999")) != 0 {
		t.Error("Operator's own /start must not produce a notification")
	}
}
