package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jcmexdev/ecommerce-mesh/internal/breaker"
	"github.com/jcmexdev/ecommerce-mesh/internal/order"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/bootstrap"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-mesh/internal/queue"
	"github.com/jcmexdev/ecommerce-mesh/internal/registry"
)

func main() {
	serviceName := "order-service"
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

	// The queue connection must be up before the listener accepts order
	// traffic: without it every placement would lose its event.
	events, err := queue.Connect(ctx,
		getEnv("AMQP_URL", "amqp://rabbitmq:5672"),
		getEnvInt("AMQP_MAX_RETRIES", 20),
		getEnvDuration("AMQP_RETRY_DELAY", 5*time.Second),
	)
	if err != nil {
		slog.Error("failed to connect to message broker", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	consul, err := registry.NewConsulRegistry(getEnv("CONSUL_ADDR", "consul:8500"))
	if err != nil {
		slog.Error("failed to connect to consul", "error", err)
		os.Exit(1)
	}

	// One breaker per protected dependency, shared by all requests.
	breakerCfg := breaker.Config{
		Timeout:          3 * time.Second,
		FailureThreshold: 50,
		CoolDown:         5 * time.Second,
	}
	inventoryBreaker := breaker.New("inventory", breakerCfg)
	paymentBreaker := breaker.New("payment", breakerCfg)

	resolver := registry.NewResolver(consul)
	saga := order.NewSaga(
		order.NewHTTPInventoryClient(resolver),
		order.NewSimulatedPayment(),
		events,
		inventoryBreaker,
		paymentBreaker,
	)

	err = bootstrap.Run(ctx, bootstrap.App{
		Name:     serviceName,
		Port:     getEnvInt("PORT", 3004),
		Handler:  order.NewRouter(order.NewHandler(saga)),
		Registry: consul,
	})
	if err != nil {
		slog.Error("order service exited", "error", err)
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
