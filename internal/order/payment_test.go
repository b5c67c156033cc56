package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedPaymentAlwaysApproves(t *testing.T) {
	p := &SimulatedPayment{SuccessRate: 1, Latency: time.Millisecond}
	assert.NoError(t, p.Process(context.Background()))
}

func TestSimulatedPaymentAlwaysDeclines(t *testing.T) {
	p := &SimulatedPayment{SuccessRate: 0, Latency: time.Millisecond}

	err := p.Process(context.Background())
	var declined *PaymentDeclinedError
	require.ErrorAs(t, err, &declined)
	assert.Equal(t, "Payment failed due to insufficient funds", declined.Reason)
}

func TestSimulatedPaymentHonoursCancellation(t *testing.T) {
	p := &SimulatedPayment{SuccessRate: 1, Latency: time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, p.Process(ctx), context.DeadlineExceeded)
}
