package order

import (
	"context"
	"math/rand"
	"time"
)

// SimulatedPayment is the stand-in payment gateway: it waits out a fake
// gateway latency and then succeeds with a fixed probability, independent of
// any input.
type SimulatedPayment struct {
	// SuccessRate in [0,1]; 0.5 by default.
	SuccessRate float64
	// Latency of the fake gateway round-trip; 1s by default.
	Latency time.Duration
}

func NewSimulatedPayment() *SimulatedPayment {
	return &SimulatedPayment{SuccessRate: 0.5, Latency: time.Second}
}

func (p *SimulatedPayment) Process(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.Latency):
	}

	if rand.Float64() < p.SuccessRate {
		return nil
	}
	return &PaymentDeclinedError{Reason: "Payment failed due to insufficient funds"}
}
