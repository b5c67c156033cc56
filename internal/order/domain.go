// Package order implements the order-placement saga: inventory reservation,
// payment, compensating release, and asynchronous event publication.
package order

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Item is one order line: a product and the quantity wanted.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Status is the terminal outcome of an order-placement attempt.
type Status string

const (
	StatusPlaced Status = "placed"
)

// Order is the value returned to the caller and emitted as an event.
// It is created only after inventory reservation and payment both succeed
// and is immutable afterwards; it is never persisted.
type Order struct {
	OrderID   string    `json:"orderId"`
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// newOrderID builds IDs that sort by creation time while staying unique
// under concurrent placement.
func newOrderID() string {
	return fmt.Sprintf("order-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// OutOfStockError reports which item the inventory service rejected.
type OutOfStockError struct {
	Message string
	Item    Item
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s: %s x%d", e.Message, e.Item.ProductID, e.Item.Quantity)
}

// PaymentDeclinedError is the business rejection from the payment step, as
// opposed to a transport or breaker failure reaching it.
type PaymentDeclinedError struct {
	Reason string
}

func (e *PaymentDeclinedError) Error() string {
	return e.Reason
}
