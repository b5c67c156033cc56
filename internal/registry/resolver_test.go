package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	instances map[string][]ServiceInstance
}

func (f *fakeRegistry) Register(context.Context, Registration) error { return nil }
func (f *fakeRegistry) Deregister(context.Context, string) error     { return nil }

func (f *fakeRegistry) Discover(_ context.Context, serviceName string) ([]ServiceInstance, error) {
	instances, ok := f.instances[serviceName]
	if !ok || len(instances) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceName)
	}
	return instances, nil
}

func threeInstances(name string) []ServiceInstance {
	return []ServiceInstance{
		{Name: name, Address: "10.0.0.1", Port: 3003},
		{Name: name, Address: "10.0.0.2", Port: 3003},
		{Name: name, Address: "10.0.0.3", Port: 3003},
	}
}

func TestResolveRoundRobin(t *testing.T) {
	resolver := NewResolver(&fakeRegistry{instances: map[string][]ServiceInstance{
		"inventory-service": threeInstances("inventory-service"),
	}})

	var got []string
	for i := 0; i < 7; i++ {
		instance, err := resolver.Resolve(context.Background(), "inventory-service")
		require.NoError(t, err)
		got = append(got, instance.Address)
	}

	// Exact rotation while the instance list is stable, wrapping modulo 3.
	assert.Equal(t, []string{
		"10.0.0.1", "10.0.0.2", "10.0.0.3",
		"10.0.0.1", "10.0.0.2", "10.0.0.3",
		"10.0.0.1",
	}, got)
}

func TestResolveUnknownService(t *testing.T) {
	resolver := NewResolver(&fakeRegistry{instances: map[string][]ServiceInstance{}})

	_, err := resolver.Resolve(context.Background(), "ghost-service")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestResolveCursorsAreScopedPerService(t *testing.T) {
	resolver := NewResolver(&fakeRegistry{instances: map[string][]ServiceInstance{
		"inventory-service": threeInstances("inventory-service"),
		"auth-service": {
			{Name: "auth-service", Address: "10.0.1.1", Port: 3001},
			{Name: "auth-service", Address: "10.0.1.2", Port: 3001},
		},
	}})
	ctx := context.Background()

	first, err := resolver.Resolve(ctx, "inventory-service")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", first.Address)

	// Resolving another service must not advance inventory's cursor.
	_, err = resolver.Resolve(ctx, "auth-service")
	require.NoError(t, err)

	second, err := resolver.Resolve(ctx, "inventory-service")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.2", second.Address)
}

func TestResolveSurvivesMembershipChange(t *testing.T) {
	reg := &fakeRegistry{instances: map[string][]ServiceInstance{
		"inventory-service": threeInstances("inventory-service"),
	}}
	resolver := NewResolver(reg)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := resolver.Resolve(ctx, "inventory-service")
		require.NoError(t, err)
	}

	// One instance drops out; the cursor keeps counting (drift is
	// accepted), resolution just keeps working modulo the new size.
	reg.instances["inventory-service"] = threeInstances("inventory-service")[:2]

	for i := 0; i < 4; i++ {
		instance, err := resolver.Resolve(ctx, "inventory-service")
		require.NoError(t, err)
		assert.Contains(t, []string{"10.0.0.1", "10.0.0.2"}, instance.Address)
	}
}

func TestBaseURL(t *testing.T) {
	instance := ServiceInstance{Name: "cart", Address: "cart-service", Port: 3002}
	assert.Equal(t, "http://cart-service:3002", instance.BaseURL())
}
