// Package bootstrap holds the startup and shutdown choreography shared by
// every service: serve HTTP, announce the instance to the registry, and on
// SIGINT/SIGTERM deregister and drain gracefully.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-mesh/internal/registry"
)

// App describes one service process.
type App struct {
	// Name is the service name other services discover it by.
	Name string
	// Port the HTTP server listens on.
	Port int
	// Handler serves all routes, /health included.
	Handler http.Handler
	// Registry is where the instance announces itself; nil skips
	// registration (local runs without a Consul agent).
	Registry registry.Registry
	// Address overrides the advertised host; defaults to Name, which is the
	// container hostname in compose/k8s setups.
	Address string
}

// Run serves the app until ctx is cancelled, then deregisters and shuts the
// server down with a 10s drain. Registration happens after the listener is
// up so the registry's first health probe can succeed.
func Run(ctx context.Context, app App) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.Port),
		Handler: app.Handler,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	instanceID := fmt.Sprintf("%s-%s", app.Name, uuid.NewString())
	if app.Registry != nil {
		address := app.Address
		if address == "" {
			address = app.Name
		}
		if hostname := os.Getenv("SERVICE_ADDR"); hostname != "" {
			address = hostname
		}

		reg := registry.Registration{
			ID:      instanceID,
			Name:    app.Name,
			Address: address,
			Port:    app.Port,
		}
		if err := app.Registry.Register(ctx, reg); err != nil {
			_ = server.Close()
			return err
		}
		slog.Info("registered with discovery backend", "instance_id", instanceID)
	}

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down", "instance_id", instanceID)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if app.Registry != nil {
		if err := app.Registry.Deregister(shutdownCtx, instanceID); err != nil {
			slog.Error("deregister failed", "instance_id", instanceID, "error", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("bootstrap: shutdown http server: %w", err)
	}
	return nil
}
