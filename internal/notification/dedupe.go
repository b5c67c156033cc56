package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper records which orders have already been notified. Queue delivery is
// at-least-once, so the consumer must treat redelivered messages as no-ops.
type Deduper interface {
	// MarkIfNew returns true exactly once per key; later calls with the same
	// key return false.
	MarkIfNew(ctx context.Context, key string) (bool, error)
}

type redisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDeduper keys processed orders in Redis with a TTL, so duplicates
// are suppressed across consumer restarts without growing unbounded.
func NewRedisDeduper(addr string, ttl time.Duration) Deduper {
	return &redisDeduper{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

func (d *redisDeduper) MarkIfNew(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, "notification:processed:"+key, 1, d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("notification: dedupe %s: %w", key, err)
	}
	return ok, nil
}

type memoryDeduper struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewMemoryDeduper is the in-process fallback for local runs and tests.
func NewMemoryDeduper() Deduper {
	return &memoryDeduper{seen: make(map[string]bool)}
}

func (d *memoryDeduper) MarkIfNew(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}
