// Package breaker implements a three-state circuit breaker for guarding
// calls to downstream dependencies.
//
// One Breaker instance protects one call-site (e.g. "call inventory") and is
// shared by every concurrent caller of that call-site. The breaker isolates
// failures, it never retries: retry policy, if wanted, belongs to the caller.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State is the breaker's position in its lifecycle.
type State int

const (
	// StateClosed lets calls pass through.
	StateClosed State = iota
	// StateOpen rejects calls without invoking the protected operation.
	StateOpen
	// StateHalfOpen permits exactly one trial call.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrOpen is returned while the breaker is open; the protected operation
	// was not invoked.
	ErrOpen = errors.New("circuit breaker is open")

	// ErrTimeout is returned when the protected operation exceeds the
	// per-call timeout. It counts as a failure exactly like an operation error.
	ErrTimeout = errors.New("circuit breaker call timed out")
)

// Config controls the transition thresholds. Zero values pick the defaults.
type Config struct {
	// Timeout bounds every protected call (default 3s).
	Timeout time.Duration
	// FailureThreshold is the failure percentage over the rolling window at
	// which the breaker opens (default 50).
	FailureThreshold float64
	// WindowSize is the number of recent calls the rolling window tracks
	// (default 10).
	WindowSize int
	// CoolDown is how long the breaker stays open before allowing a trial
	// call (default 5s).
	CoolDown time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Second
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 50
	}
	if c.WindowSize <= 0 {
		c.WindowSize = 10
	}
	if c.CoolDown <= 0 {
		c.CoolDown = 5 * time.Second
	}
	return c
}

// Breaker is safe for concurrent use. All state transitions happen under a
// single mutex so concurrent failures cannot double-count or race a
// transition.
type Breaker struct {
	name string
	cfg  Config

	mu       sync.Mutex
	state    State
	openedAt time.Time
	// window is a ring of recent call outcomes (true = failure).
	window  []bool
	pos     int
	filled  int
	trialIn bool
}

func New(name string, cfg Config) *Breaker {
	cfg = cfg.withDefaults()
	return &Breaker{
		name:   name,
		cfg:    cfg,
		state:  StateClosed,
		window: make([]bool, cfg.WindowSize),
	}
}

func (b *Breaker) Name() string { return b.name }

// State reports the current state, applying the open → half-open timer.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && time.Since(b.openedAt) >= b.cfg.CoolDown {
		return StateHalfOpen
	}
	return b.state
}

// Do runs op under the breaker's policy.
//
// While open it fails immediately with ErrOpen and op is never invoked.
// Otherwise it returns op's error, or ErrTimeout if op outlives the per-call
// timeout. Callers needing a result capture it in the closure.
func (b *Breaker) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if err := b.acquire(); err != nil {
		return err
	}

	err := b.invoke(ctx, op)
	b.record(err)
	return err
}

// acquire decides whether the call may proceed and claims the half-open
// trial slot if applicable.
func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		if time.Since(b.openedAt) < b.cfg.CoolDown {
			return fmt.Errorf("%s: %w", b.name, ErrOpen)
		}
		b.state = StateHalfOpen
		b.trialIn = false
	}

	if b.state == StateHalfOpen {
		if b.trialIn {
			// A trial is already in flight; everyone else is rejected.
			return fmt.Errorf("%s: %w", b.name, ErrOpen)
		}
		b.trialIn = true
	}

	return nil
}

// invoke runs op with the per-call timeout applied. The operation is not
// cancelled beyond its context: if it ignores cancellation it finishes in
// the background while the breaker already counted the timeout.
func (b *Breaker) invoke(ctx context.Context, op func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(callCtx)
	}()

	select {
	case err := <-done:
		return err
	case <-callCtx.Done():
		return fmt.Errorf("%s after %s: %w", b.name, b.cfg.Timeout, ErrTimeout)
	}
}

func (b *Breaker) record(err error) {
	failed := err != nil

	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateHalfOpen:
		b.trialIn = false
		if failed {
			b.trip()
		} else {
			b.reset()
		}
	case StateClosed:
		b.window[b.pos] = failed
		b.pos = (b.pos + 1) % len(b.window)
		if b.filled < len(b.window) {
			b.filled++
		}
		if failed && b.failureRate() >= b.cfg.FailureThreshold {
			b.trip()
		}
	case StateOpen:
		// Another caller tripped the breaker while this call was in
		// flight; its outcome no longer matters.
	}
}

// failureRate is the failure percentage over the filled portion of the
// window. Caller must hold b.mu.
func (b *Breaker) failureRate() float64 {
	if b.filled == 0 {
		return 0
	}
	failures := 0
	for i := 0; i < b.filled; i++ {
		if b.window[i] {
			failures++
		}
	}
	return float64(failures) / float64(b.filled) * 100
}

// trip moves to open and stamps the cool-down clock. Caller must hold b.mu.
func (b *Breaker) trip() {
	b.state = StateOpen
	b.openedAt = time.Now()
}

// reset returns to closed with a clean window. Caller must hold b.mu.
func (b *Breaker) reset() {
	b.state = StateClosed
	b.window = make([]bool, b.cfg.WindowSize)
	b.pos = 0
	b.filled = 0
}
