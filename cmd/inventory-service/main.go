package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jcmexdev/ecommerce-mesh/internal/inventory"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/bootstrap"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-mesh/internal/registry"
)

func main() {
	serviceName := "inventory-service"
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

	store := inventory.NewStore(inventory.DefaultStock())

	err = bootstrap.Run(ctx, bootstrap.App{
		Name:     serviceName,
		Port:     getEnvInt("PORT", 3003),
		Handler:  inventory.NewRouter(inventory.NewHandler(store)),
		Registry: consul,
	})
	if err != nil {
		slog.Error("inventory service exited", "error", err)
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
