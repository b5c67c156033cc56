// Package queue is the RabbitMQ client used for asynchronous order events:
// bounded-retry connection setup, durable-enough publishing, and
// manual-acknowledgment consumption of typed envelopes.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrChannelUnavailable is returned by Publish when no channel is open.
// Publishing without a connection is a hard error surfaced to the caller,
// never a silent drop: the caller decides whether to retry, buffer, or fail
// the request.
var ErrChannelUnavailable = errors.New("queue: channel not available")

// Handler processes one delivered envelope. The message is acknowledged only
// after the handler returns nil; a crash before that causes redelivery, so
// handlers must tolerate duplicates.
type Handler func(ctx context.Context, env Envelope) error

type dialFunc func(url string) (*amqp.Connection, error)

// Client owns the single AMQP connection and channel of a process.
// Connection setup happens once at service startup, not per request.
type Client struct {
	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Connect dials the broker, retrying up to maxRetries times with a fixed
// delay between attempts. It fails permanently only after all retries are
// exhausted — services that depend on the queue must treat that as fatal and
// not accept traffic.
func Connect(ctx context.Context, url string, maxRetries int, delay time.Duration) (*Client, error) {
	return connect(ctx, url, maxRetries, delay, amqp.Dial)
}

func connect(ctx context.Context, url string, maxRetries int, delay time.Duration, dial dialFunc) (*Client, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		conn, err := dial(url)
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr == nil {
				slog.Info("connected to message broker", "attempt", attempt)
				return &Client{conn: conn, ch: ch}, nil
			}
			conn.Close()
			err = chErr
		}

		lastErr = err
		slog.Warn("broker connection failed",
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt == maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("queue: connect failed after %d attempts: %w", maxRetries, lastErr)
}

// Publish declares queueName (idempotent, so the queue exists even before
// any consumer starts) and sends the envelope as JSON.
func (c *Client) Publish(ctx context.Context, queueName string, env Envelope) error {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()

	if ch == nil {
		return ErrChannelUnavailable
	}

	if _, err := ch.QueueDeclare(queueName, false, false, false, false, nil); err != nil {
		return fmt.Errorf("queue: declare %s: %w", queueName, err)
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("queue: encode envelope: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("queue: publish to %s: %w", queueName, err)
	}

	return nil
}

// Consume registers handler for queueName and processes deliveries until ctx
// is cancelled or the channel closes. Acknowledgment is manual: ack after
// the handler succeeds, nack-with-requeue after it fails. Malformed bodies
// are logged and acked so a poison message cannot wedge the queue.
func (c *Client) Consume(ctx context.Context, queueName string, handler Handler) error {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()

	if ch == nil {
		return ErrChannelUnavailable
	}

	if _, err := ch.QueueDeclare(queueName, false, false, false, false, nil); err != nil {
		return fmt.Errorf("queue: declare %s: %w", queueName, err)
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue: consume %s: %w", queueName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				c.dispatch(ctx, queueName, d, handler)
			}
		}
	}()

	return nil
}

func (c *Client) dispatch(ctx context.Context, queueName string, d amqp.Delivery, handler Handler) {
	var env Envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		slog.Warn("dropping malformed queue message", "queue", queueName, "error", err)
		_ = d.Ack(false)
		return
	}

	if err := handler(ctx, env); err != nil {
		slog.Error("handler failed, requeueing message",
			"queue", queueName,
			"type", string(env.Type),
			"error", err,
		)
		_ = d.Nack(false, true)
		return
	}

	_ = d.Ack(false)
}

// Close tears down the channel and connection. Safe to call once at
// shutdown.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ch != nil {
		_ = c.ch.Close()
		c.ch = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
