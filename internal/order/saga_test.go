package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-mesh/internal/breaker"
	"github.com/jcmexdev/ecommerce-mesh/internal/queue"
)

type fakeInventory struct {
	result     CheckResult
	checkErr   error
	checkCalls int

	releaseCalls int
	releasedWith []Item
	releaseErr   error
}

func (f *fakeInventory) Check(_ context.Context, _ []Item) (CheckResult, error) {
	f.checkCalls++
	return f.result, f.checkErr
}

func (f *fakeInventory) Release(_ context.Context, items []Item) error {
	f.releaseCalls++
	f.releasedWith = items
	return f.releaseErr
}

type fakePayment struct {
	err   error
	calls int
}

func (f *fakePayment) Process(context.Context) error {
	f.calls++
	return f.err
}

type fakePublisher struct {
	err       error
	published []queue.Envelope
}

func (f *fakePublisher) Publish(_ context.Context, _ string, env queue.Envelope) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, env)
	return nil
}

func testBreaker(name string) *breaker.Breaker {
	return breaker.New(name, breaker.Config{
		Timeout:    time.Second,
		WindowSize: 100,
		CoolDown:   time.Minute,
	})
}

func newTestSaga(inv *fakeInventory, pay *fakePayment, pub *fakePublisher) *Saga {
	return NewSaga(inv, pay, pub, testBreaker("inventory"), testBreaker("payment"))
}

var testItems = []Item{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 1}}

func TestPlaceOrderSuccess(t *testing.T) {
	inv := &fakeInventory{result: CheckResult{Success: true}}
	pay := &fakePayment{}
	pub := &fakePublisher{}

	placed, err := newTestSaga(inv, pay, pub).PlaceOrder(context.Background(), "u1", testItems)
	require.NoError(t, err)

	assert.Equal(t, "u1", placed.UserID)
	assert.Equal(t, StatusPlaced, placed.Status)
	assert.NotEmpty(t, placed.OrderID)
	assert.False(t, placed.Timestamp.IsZero())

	require.Len(t, pub.published, 1)
	assert.Equal(t, queue.EventOrderPlaced, pub.published[0].Type)

	var event Order
	require.NoError(t, pub.published[0].Decode(&event))
	assert.Equal(t, placed.OrderID, event.OrderID)
	assert.Equal(t, "u1", event.UserID)
}

func TestPlaceOrderIDsAreUnique(t *testing.T) {
	inv := &fakeInventory{result: CheckResult{Success: true}}
	saga := newTestSaga(inv, &fakePayment{}, &fakePublisher{})

	first, err := saga.PlaceOrder(context.Background(), "u1", testItems)
	require.NoError(t, err)
	second, err := saga.PlaceOrder(context.Background(), "u1", testItems)
	require.NoError(t, err)

	assert.NotEqual(t, first.OrderID, second.OrderID)
}

func TestPlaceOrderOutOfStock(t *testing.T) {
	offending := Item{ProductID: "p2", Quantity: 99}
	inv := &fakeInventory{result: CheckResult{Success: false, Message: "Item out of stock", Item: &offending}}
	pay := &fakePayment{}
	pub := &fakePublisher{}

	_, err := newTestSaga(inv, pay, pub).PlaceOrder(context.Background(), "u1", testItems)

	var outOfStock *OutOfStockError
	require.ErrorAs(t, err, &outOfStock)
	assert.Equal(t, offending, outOfStock.Item)

	// Terminal before payment: nothing charged, nothing published.
	assert.Zero(t, pay.calls)
	assert.Empty(t, pub.published)
	assert.Zero(t, inv.releaseCalls)
}

func TestPlaceOrderPaymentFailed(t *testing.T) {
	inv := &fakeInventory{result: CheckResult{Success: true}}
	pay := &fakePayment{err: &PaymentDeclinedError{Reason: "Payment failed due to insufficient funds"}}
	pub := &fakePublisher{}

	_, err := newTestSaga(inv, pay, pub).PlaceOrder(context.Background(), "u1", testItems)

	var declined *PaymentDeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, "Payment failed due to insufficient funds", declined.Reason)

	// The stock reserved by the check is compensated.
	assert.Equal(t, 1, inv.releaseCalls)
	assert.Equal(t, testItems, inv.releasedWith)

	require.Len(t, pub.published, 1)
	assert.Equal(t, queue.EventOrderPaymentFailed, pub.published[0].Type)

	var event struct {
		UserID string `json:"userId"`
		Reason string `json:"reason"`
	}
	require.NoError(t, pub.published[0].Decode(&event))
	assert.Equal(t, "u1", event.UserID)
	assert.Equal(t, "Payment failed due to insufficient funds", event.Reason)
}

func TestPlaceOrderInventoryUnreachable(t *testing.T) {
	inv := &fakeInventory{checkErr: errors.New("connection refused")}
	pub := &fakePublisher{}

	_, err := newTestSaga(inv, &fakePayment{}, pub).PlaceOrder(context.Background(), "u1", testItems)

	require.Error(t, err)
	var outOfStock *OutOfStockError
	assert.False(t, errors.As(err, &outOfStock))
	assert.Empty(t, pub.published)
}

func TestPlaceOrderInventoryBreakerOpen(t *testing.T) {
	inv := &fakeInventory{result: CheckResult{Success: true}}
	invBreaker := breaker.New("inventory", breaker.Config{WindowSize: 1, CoolDown: time.Minute})

	// Trip the breaker before the order arrives.
	require.Error(t, invBreaker.Do(context.Background(), func(context.Context) error {
		return errors.New("boom")
	}))

	saga := NewSaga(inv, &fakePayment{}, &fakePublisher{}, invBreaker, testBreaker("payment"))
	_, err := saga.PlaceOrder(context.Background(), "u1", testItems)

	require.ErrorIs(t, err, breaker.ErrOpen)
	// Fast fail: the inventory client was never invoked.
	assert.Zero(t, inv.checkCalls)
}

func TestPlaceOrderPublishFailureSurfaces(t *testing.T) {
	inv := &fakeInventory{result: CheckResult{Success: true}}
	pub := &fakePublisher{err: queue.ErrChannelUnavailable}

	_, err := newTestSaga(inv, &fakePayment{}, pub).PlaceOrder(context.Background(), "u1", testItems)

	// Losing the event silently is the one bug this design refuses to keep.
	require.ErrorIs(t, err, queue.ErrChannelUnavailable)
}

func TestPlaceOrderReleaseFailureDoesNotMaskOutcome(t *testing.T) {
	inv := &fakeInventory{
		result:     CheckResult{Success: true},
		releaseErr: errors.New("release unreachable"),
	}
	pay := &fakePayment{err: errors.New("gateway exploded")}
	pub := &fakePublisher{}

	_, err := newTestSaga(inv, pay, pub).PlaceOrder(context.Background(), "u1", testItems)

	// The caller still sees the payment failure, not the compensation error.
	var declined *PaymentDeclinedError
	require.ErrorAs(t, err, &declined)
	require.Len(t, pub.published, 1)
	assert.Equal(t, queue.EventOrderPaymentFailed, pub.published[0].Type)
}
