package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	portssvc "github.com/finvault/ledgersvc/internal/core/ports/services"
	"github.com/finvault/ledgersvc/internal/middleware"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// envelope is the wire shape published to the notification topic.
type envelope struct {
	UserID  string    `json:"userID"`
	Event   string    `json:"event"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sentAt"`
}

// Dispatcher publishes transfer lifecycle events to a Kafka topic, keyed by
// user ID so one user's notifications stay ordered within a partition.
type Dispatcher struct {
	writer *kafka.Writer
}

// NewDispatcher creates a Kafka-backed notification dispatcher.
func NewDispatcher(brokers []string, topic string) *Dispatcher {
	return &Dispatcher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

var _ portssvc.NotificationDispatcher = (*Dispatcher)(nil)

// Notify publishes the event without blocking the caller. Delivery is
// best-effort: a failed publish is logged, never surfaced to the operation
// that produced the event.
func (d *Dispatcher) Notify(ctx context.Context, userID string, event string, payload any) {
	logger := middleware.GetLoggerFromCtx(ctx)

	data, err := json.Marshal(envelope{
		UserID:  userID,
		Event:   event,
		Payload: payload,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		logger.Error("Failed to marshal notification event", slog.String("event", event), slog.String("error", err.Error()))
		return
	}

	go func() {
		// Detached from the request lifecycle; the publish must survive the
		// HTTP response being sent.
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()

		err := d.writer.WriteMessages(pubCtx, kafka.Message{
			Key:   []byte(userID),
			Value: data,
		})
		if err != nil {
			logger.Error("Failed to publish notification event",
				slog.String("event", event),
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Close flushes and closes the underlying writer.
func (d *Dispatcher) Close() error {
	return d.writer.Close()
}
