package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRetriesAreBounded(t *testing.T) {
	dialErr := errors.New("connection refused")
	attempts := 0
	dial := func(string) (*amqp.Connection, error) {
		attempts++
		return nil, dialErr
	}

	_, err := connect(context.Background(), "amqp://rabbitmq:5672", 5, time.Millisecond, dial)

	require.Error(t, err)
	assert.ErrorIs(t, err, dialErr)
	// Exactly maxRetries attempts, then permanent failure — never an
	// unbounded loop.
	assert.Equal(t, 5, attempts)
}

func TestConnectStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	dial := func(string) (*amqp.Connection, error) {
		attempts++
		cancel()
		return nil, errors.New("connection refused")
	}

	_, err := connect(ctx, "amqp://rabbitmq:5672", 10, time.Hour, dial)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestPublishWithoutChannel(t *testing.T) {
	var client Client

	env, err := NewEnvelope(EventOrderPlaced, map[string]string{"orderId": "order-1"})
	require.NoError(t, err)

	err = client.Publish(context.Background(), QueueOrderNotifications, env)
	// A missing channel is a reported error, never a silent drop.
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}

func TestConsumeWithoutChannel(t *testing.T) {
	var client Client

	err := client.Consume(context.Background(), QueueOrderNotifications, func(context.Context, Envelope) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrChannelUnavailable)
}
