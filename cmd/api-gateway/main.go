package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jcmexdev/ecommerce-mesh/internal/gateway"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/bootstrap"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-mesh/internal/registry"
)

func main() {
	serviceName := "api-gateway"
	telemetry.InitLogger(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, serviceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	consul, err := registry.NewConsulRegistry(getEnv("CONSUL_ADDR", "consul:8500"))
	if err != nil {
		slog.Error("failed to connect to consul", "error", err)
		os.Exit(1)
	}

	resolver := registry.NewResolver(consul)
	proxy := gateway.NewProxy(resolver, getEnvDuration("PROXY_UPSTREAM_TIMEOUT", 30*time.Second))

	err = bootstrap.Run(ctx, bootstrap.App{
		Name:    serviceName,
		Port:    getEnvInt("PORT", 3000),
		Handler: gateway.NewRouter(proxy),
		// The gateway fronts the mesh; nothing discovers it, so it does not
		// register itself.
	})
	if err != nil {
		slog.Error("gateway exited", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
