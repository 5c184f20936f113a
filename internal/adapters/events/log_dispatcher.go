package events

import (
	"context"
	"log/slog"

	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/middleware"
)

// LogDispatcher is the fallback notification dispatcher used when no broker is
// configured. Events go to the structured log and nowhere else.
type LogDispatcher struct{}

// NewLogDispatcher creates a log-only notification dispatcher.
func NewLogDispatcher() *LogDispatcher {
	return &LogDispatcher{}
}

var _ portssvc.NotificationDispatcher = (*LogDispatcher)(nil)

func (d *LogDispatcher) Notify(ctx context.Context, userID string, event string, payload any) {
	middleware.GetLoggerFromCtx(ctx).Info("Notification event",
		slog.String("event", event),
		slog.String("userID", userID),
		slog.Any("payload", payload),
	)
}
