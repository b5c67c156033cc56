package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-mesh/internal/breaker"
	"github.com/jcmexdev/ecommerce-mesh/internal/queue"
)

// paymentFailedEvent is the payload of an ORDER_PAYMENT_FAILED envelope.
// An ORDER_PLACED envelope carries the Order itself.
type paymentFailedEvent struct {
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// Saga drives one order placement through its forward steps —
// inventory reservation, payment, event publication — and through the
// compensating inventory release when payment fails after stock was already
// decremented.
//
// Both downstream calls go through their own circuit breaker; the breakers
// are shared across all concurrent placements.
type Saga struct {
	inventory InventoryClient
	payments  PaymentProcessor
	events    EventPublisher

	inventoryBreaker *breaker.Breaker
	paymentBreaker   *breaker.Breaker
}

func NewSaga(
	inventory InventoryClient,
	payments PaymentProcessor,
	events EventPublisher,
	inventoryBreaker *breaker.Breaker,
	paymentBreaker *breaker.Breaker,
) *Saga {
	return &Saga{
		inventory:        inventory,
		payments:         payments,
		events:           events,
		inventoryBreaker: inventoryBreaker,
		paymentBreaker:   paymentBreaker,
	}
}

// PlaceOrder runs the saga synchronously and returns the placed order.
//
// Failure modes, in workflow order:
//   - inventory unreachable / breaker open  → plain error (the caller maps it to 500)
//   - item out of stock                     → *OutOfStockError, no event published
//   - payment failed (for any reason)       → *PaymentDeclinedError after the
//     reserved stock is released and exactly one ORDER_PAYMENT_FAILED event
//     is published
//   - success                               → exactly one ORDER_PLACED event
func (s *Saga) PlaceOrder(ctx context.Context, userID string, items []Item) (*Order, error) {
	var check CheckResult
	err := s.inventoryBreaker.Do(ctx, func(ctx context.Context) error {
		var opErr error
		check, opErr = s.inventory.Check(ctx, items)
		return opErr
	})
	if err != nil {
		slog.ErrorContext(ctx, "inventory check failed",
			"user_id", userID,
			"fast_fail", errors.Is(err, breaker.ErrOpen),
			"error", err,
		)
		return nil, fmt.Errorf("inventory check: %w", err)
	}

	if !check.Success {
		item := Item{}
		if check.Item != nil {
			item = *check.Item
		}
		return nil, &OutOfStockError{Message: check.Message, Item: item}
	}

	// Stock is reserved from here on; every failure below must compensate.
	if err := s.paymentBreaker.Do(ctx, func(ctx context.Context) error {
		return s.payments.Process(ctx)
	}); err != nil {
		slog.WarnContext(ctx, "payment failed",
			"user_id", userID,
			"fast_fail", errors.Is(err, breaker.ErrOpen),
			"error", err,
		)
		s.releaseStock(ctx, userID, items)

		if pubErr := s.publish(ctx, queue.EventOrderPaymentFailed, paymentFailedEvent{
			UserID:    userID,
			Items:     items,
			Reason:    err.Error(),
			Timestamp: time.Now().UTC(),
		}); pubErr != nil {
			return nil, pubErr
		}

		var declined *PaymentDeclinedError
		if errors.As(err, &declined) {
			return nil, declined
		}
		return nil, &PaymentDeclinedError{Reason: err.Error()}
	}

	placed := &Order{
		OrderID:   newOrderID(),
		UserID:    userID,
		Items:     items,
		Status:    StatusPlaced,
		Timestamp: time.Now().UTC(),
	}

	if err := s.publish(ctx, queue.EventOrderPlaced, placed); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "order placed", "order_id", placed.OrderID, "user_id", userID)
	return placed, nil
}

// releaseStock undoes the inventory decrement. The release is best-effort:
// a failure here leaves stock over-reserved and is only logged, it does not
// change the saga outcome.
func (s *Saga) releaseStock(ctx context.Context, userID string, items []Item) {
	if err := s.inventory.Release(ctx, items); err != nil {
		slog.ErrorContext(ctx, "CRITICAL: failed to release reserved stock",
			"user_id", userID,
			"error", err,
		)
	}
}

func (s *Saga) publish(ctx context.Context, eventType queue.EventType, payload any) error {
	env, err := queue.NewEnvelope(eventType, payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}
	if err := s.events.Publish(ctx, queue.QueueOrderNotifications, env); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}
