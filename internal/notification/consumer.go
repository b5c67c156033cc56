// Package notification consumes order events from the queue and emits user
// notifications (logged here; the delivery channel — email, SMS — would hang
// off Notify).
package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-mesh/internal/queue"
)

// placedOrder is the slice of the ORDER_PLACED payload this service reads.
type placedOrder struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

// paymentFailure is the slice of the ORDER_PAYMENT_FAILED payload this
// service reads.
type paymentFailure struct {
	UserID string `json:"userId"`
	Reason string `json:"reason"`
}

// Consumer turns queue envelopes into notifications.
type Consumer struct {
	deduper Deduper
}

func NewConsumer(deduper Deduper) *Consumer {
	return &Consumer{deduper: deduper}
}

// Handle implements queue.Handler. Unknown envelope types are logged and
// dropped — returning nil acknowledges them so they are never redelivered.
func (c *Consumer) Handle(ctx context.Context, env queue.Envelope) error {
	switch env.Type {
	case queue.EventOrderPlaced:
		return c.handlePlaced(ctx, env)
	case queue.EventOrderPaymentFailed:
		return c.handlePaymentFailed(ctx, env)
	default:
		slog.WarnContext(ctx, "unknown message type, dropping", "type", string(env.Type))
		return nil
	}
}

func (c *Consumer) handlePlaced(ctx context.Context, env queue.Envelope) error {
	var order placedOrder
	if err := env.Decode(&order); err != nil {
		slog.WarnContext(ctx, "dropping undecodable ORDER_PLACED payload", "error", err)
		return nil
	}

	fresh, err := c.deduper.MarkIfNew(ctx, order.OrderID)
	if err != nil {
		// Dedupe store unavailable: fail the handler so the message is
		// redelivered rather than risking a lost notification.
		return err
	}
	if !fresh {
		slog.InfoContext(ctx, "duplicate delivery, already notified", "order_id", order.OrderID)
		return nil
	}

	slog.InfoContext(ctx, "sending order confirmation",
		"order_id", order.OrderID,
		"user_id", order.UserID,
	)
	return nil
}

func (c *Consumer) handlePaymentFailed(ctx context.Context, env queue.Envelope) error {
	var failure paymentFailure
	if err := env.Decode(&failure); err != nil {
		slog.WarnContext(ctx, "dropping undecodable ORDER_PAYMENT_FAILED payload", "error", err)
		return nil
	}

	slog.InfoContext(ctx, "sending payment-failure notice",
		"user_id", failure.UserID,
		"reason", failure.Reason,
	)
	return nil
}
