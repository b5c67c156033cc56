package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/jcmexdev/ecommerce-mesh/internal/auth"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/bootstrap"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-mesh/internal/registry"
)

func main() {
	serviceName := "auth-service"
	telemetry.InitLogger(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consul, err := registry.NewConsulRegistry(getEnv("CONSUL_ADDR", "consul:8500"))
	if err != nil {
		slog.Error("failed to connect to consul", "error", err)
		os.Exit(1)
	}

	err = bootstrap.Run(ctx, bootstrap.App{
		Name:     serviceName,
		Port:     getEnvInt("PORT", 3001),
		Handler:  auth.NewRouter(),
		Registry: consul,
	})
	if err != nil {
		slog.Error("auth service exited", "error", err)
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
