package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/consul/api"
)

// ConsulRegistry implements Registry against a Consul agent.
type ConsulRegistry struct {
	client *api.Client
}

// NewConsulRegistry connects to the Consul agent at addr (host:port).
// An empty addr falls back to the standard CONSUL_HTTP_ADDR handling of the
// Consul SDK.
func NewConsulRegistry(addr string) (*ConsulRegistry, error) {
	cfg := api.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("registry: create consul client: %w", err)
	}

	return &ConsulRegistry{client: client}, nil
}

func (c *ConsulRegistry) Register(ctx context.Context, reg Registration) error {
	check := &api.AgentServiceCheck{
		HTTP:     fmt.Sprintf("http://%s:%d/health", reg.Address, reg.Port),
		Interval: "10s",
		Timeout:  "5s",
	}

	err := c.client.Agent().ServiceRegisterOpts(&api.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Check:   check,
	}, api.ServiceRegisterOpts{}.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("registry: register %s: %w", reg.Name, err)
	}

	return nil
}

func (c *ConsulRegistry) Deregister(ctx context.Context, instanceID string) error {
	if err := c.client.Agent().ServiceDeregisterOpts(instanceID, (&api.QueryOptions{}).WithContext(ctx)); err != nil {
		return fmt.Errorf("registry: deregister %s: %w", instanceID, err)
	}
	return nil
}

// Discover queries Consul for passing instances only. A backend error and an
// empty result are both reported as ErrServiceNotFound: in either case there
// is nothing to route to.
func (c *ConsulRegistry) Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error) {
	entries, _, err := c.client.Health().Service(serviceName, "", true, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrServiceNotFound, serviceName, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceName)
	}

	instances := make([]ServiceInstance, 0, len(entries))
	for _, entry := range entries {
		addr := entry.Service.Address
		if addr == "" {
			addr = entry.Node.Address
		}
		instances = append(instances, ServiceInstance{
			Name:    serviceName,
			Address: addr,
			Port:    entry.Service.Port,
		})
	}

	return instances, nil
}
