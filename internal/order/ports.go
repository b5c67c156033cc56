package order

import (
	"context"

	"github.com/jcmexdev/ecommerce-mesh/internal/queue"
)

// CheckResult is the inventory service's verdict on a reservation request.
type CheckResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Item    *Item  `json:"item,omitempty"`
}

// InventoryClient reaches the inventory collaborator. Check is authoritative:
// on success the stock is already decremented and is not re-verified here.
// Release is the compensating action undoing a successful Check.
type InventoryClient interface {
	Check(ctx context.Context, items []Item) (CheckResult, error)
	Release(ctx context.Context, items []Item) error
}

// PaymentProcessor charges the customer. The default implementation is a
// stochastic simulation; a real gateway integration plugs in behind the same
// breaker-wrapped interface.
type PaymentProcessor interface {
	Process(ctx context.Context) error
}

// EventPublisher emits order lifecycle events. Implemented by *queue.Client.
type EventPublisher interface {
	Publish(ctx context.Context, queueName string, env queue.Envelope) error
}
