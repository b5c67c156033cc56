// Package registry provides service registration and discovery backed by
// Consul, plus a load-balanced resolver on top of it.
//
// Every service registers itself on startup with an HTTP health check; the
// Consul agent polls the check and drops unhealthy instances from discovery
// results, so this package never re-verifies instance health itself.
package registry

import (
	"context"
	"errors"
	"fmt"
)

// ErrServiceNotFound is returned when the discovery backend knows no healthy
// instance for the requested service name.
var ErrServiceNotFound = errors.New("service not found")

// ServiceInstance is one running, network-addressable replica of a named
// service, valid for a single resolution cycle.
type ServiceInstance struct {
	Name    string
	Address string
	Port    int
}

// BaseURL returns the http origin of the instance, e.g. "http://inventory-service:3003".
func (s ServiceInstance) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", s.Address, s.Port)
}

// Registration describes how a service announces itself to the backend.
type Registration struct {
	ID   string
	Name string
	// Address is the hostname other services reach this instance at
	// (the container hostname in compose/k8s setups).
	Address string
	Port    int
}

// Registry is the port to the discovery backend.
type Registry interface {
	// Register announces an instance. The backend starts health-checking it
	// immediately; an instance failing its check disappears from Discover.
	Register(ctx context.Context, reg Registration) error

	// Deregister removes an instance, typically on graceful shutdown.
	Deregister(ctx context.Context, instanceID string) error

	// Discover returns all healthy instances of a service.
	// It fails with ErrServiceNotFound when none are registered.
	Discover(ctx context.Context, serviceName string) ([]ServiceInstance, error)
}
