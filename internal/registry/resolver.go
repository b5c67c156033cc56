package registry

import (
	"context"
	"sync"
)

// Resolver picks one instance per call from the discovery backend, rotating
// through healthy instances of each service in round-robin order.
//
// The per-service cursor lives for the whole process so balancing carries
// across requests. When the instance set changes between lookups the cursor
// is deliberately not reset — the index drifts, which trades exact rotation
// under churn for eventual fairness.
type Resolver struct {
	registry Registry

	mu      sync.Mutex
	cursors map[string]int
}

func NewResolver(registry Registry) *Resolver {
	return &Resolver{
		registry: registry,
		cursors:  make(map[string]int),
	}
}

// Resolve returns the next instance of serviceName.
// It performs a fresh Discover on every call; instances are never cached
// beyond one lookup, only the cursor is.
func (r *Resolver) Resolve(ctx context.Context, serviceName string) (ServiceInstance, error) {
	instances, err := r.registry.Discover(ctx, serviceName)
	if err != nil {
		return ServiceInstance{}, err
	}

	r.mu.Lock()
	cursor := r.cursors[serviceName]
	r.cursors[serviceName] = cursor + 1
	r.mu.Unlock()

	return instances[cursor%len(instances)], nil
}
