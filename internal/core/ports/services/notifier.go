package services

import "context"

// Notification event names published on transfer outcomes.
const (
	EventTransferCompleted = "transfer.completed"
	EventTransferFailed    = "transfer.failed"
	EventTransferReversed  = "transfer.reversed"
)

// NotificationDispatcher informs account owners of transfer outcomes.
// Delivery is fire-and-forget; errors are logged by implementations and never
// influence the outcome of the triggering operation.
type NotificationDispatcher interface {
	Notify(ctx context.Context, userID string, event string, payload any)
}
