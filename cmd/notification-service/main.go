package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/ecommerce-mesh/internal/notification"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/bootstrap"
	"github.com/jcmexdev/ecommerce-mesh/internal/pkg/telemetry"
	"github.com/jcmexdev/ecommerce-mesh/internal/queue"
	"github.com/jcmexdev/ecommerce-mesh/internal/registry"
)

func main() {
	serviceName := "notification-service"
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

	client, err := queue.Connect(ctx,
		getEnv("AMQP_URL", "amqp://rabbitmq:5672"),
		getEnvInt("AMQP_MAX_RETRIES", 20),
		getEnvDuration("AMQP_RETRY_DELAY", 5*time.Second),
	)
	if err != nil {
		slog.Error("failed to connect to message broker", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	var deduper notification.Deduper
	if redisAddr := getEnv("REDIS_ADDR", ""); redisAddr != "" {
		deduper = notification.NewRedisDeduper(redisAddr, 24*time.Hour)
	} else {
		slog.Warn("REDIS_ADDR not set, deduplication is process-local only")
		deduper = notification.NewMemoryDeduper()
	}

	consumer := notification.NewConsumer(deduper)
	if err := client.Consume(ctx, queue.QueueOrderNotifications, consumer.Handle); err != nil {
		slog.Error("failed to start consumer", "error", err)
		os.Exit(1)
	}
	slog.Info("waiting for messages", "queue", queue.QueueOrderNotifications)

	consul, err := registry.NewConsulRegistry(getEnv("CONSUL_ADDR", "consul:8500"))
	if err != nil {
		slog.Error("failed to connect to consul", "error", err)
		os.Exit(1)
	}

	err = bootstrap.Run(ctx, bootstrap.App{
		Name:     serviceName,
		Port:     getEnvInt("PORT", 3005),
		Handler:  newRouter(),
		Registry: consul,
	})
	if err != nil {
		slog.Error("notification service exited", "error", err)
		os.Exit(1)
	}
}

// newRouter exposes only the health check; all real work arrives via the
// queue.
func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	return r
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
