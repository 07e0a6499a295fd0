package core

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"tunegram/internal/chat"
)

// Notifier delivers best-effort operational messages to the configured
// operator. With no operator configured every call is a no-op; transport
// failures are logged and swallowed, never returned.
type Notifier struct {
	frontend   chat.Frontend
	operatorID int64
	logger     *zap.Logger
}

// NewNotifier creates a notifier for the given operator id (0 disables it).
func NewNotifier(frontend chat.Frontend, operatorID int64, logger *zap.Logger) *Notifier {
	return &Notifier{
		frontend:   frontend,
		operatorID: operatorID,
		logger:     logger,
	}
}

// OperatorID returns the configured operator id, 0 when unset.
func (n *Notifier) OperatorID() int64 {
	return n.operatorID
}

// NotifyOperator sends a text message to the operator's private chat.
func (n *Notifier) NotifyOperator(ctx context.Context, text string) {
	if n.operatorID == 0 {
		return
	}

	if _, err := n.frontend.SendText(ctx, strconv.FormatInt(n.operatorID, 10), text); err != nil {
		n.logger.Error("Failed to send operator notification", zap.Error(err))
	}
}
