// Package chat provides a unified interface for chat frontends.
package chat

import (
	"context"
)

// EventKind classifies an inbound chat event.
type EventKind int

const (
	// EventCommand is a slash command such as /start
	EventCommand EventKind = iota
	// EventText is a free-text message
	EventText
	// EventCallback is an inline-button activation with an opaque payload
	EventCallback
)

// Event is a normalized inbound event from any frontend.
type Event struct {
	Kind           EventKind
	ChatID         string
	SenderID       int64
	SenderName     string
	SenderUsername string
	Command        string // command name without the leading slash
	Text           string
	Data           string // opaque callback payload
	Raw            any    // underlying library update struct
}

// Choice is one inline-keyboard button: a visible label and an opaque
// payload that round-trips through the client.
type Choice struct {
	Label string
	Data  string
}

// Audio is an audio file attachment with its display metadata.
type Audio struct {
	Path      string
	Title     string
	Performer string
	Caption   string
}

// Frontend defines the unified interface for all chat integrations.
type Frontend interface {
	// Start initializes the frontend and verifies transport access
	Start(ctx context.Context) error

	// Listen blocks, delivering inbound events to handler until ctx is done
	Listen(ctx context.Context, handler func(ctx context.Context, event *Event)) error

	// SendText sends a text message and returns the sent message id
	SendText(ctx context.Context, chatID, text string) (string, error)

	// SendChoices sends a text message with one inline button per choice
	SendChoices(ctx context.Context, chatID, text string, choices []Choice) error

	// SendAudio sends an audio file attachment
	SendAudio(ctx context.Context, chatID string, audio *Audio) error
}
