package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/events"
	"github.com/ghuser/mall/pkg/logger"
	"github.com/ghuser/mall/pkg/telemetry"
	cartSubscribers "github.com/ghuser/mall/services/cart/application/subscribers"
	cartEvents "github.com/ghuser/mall/services/cart/domain/events"
	itemSubscribers "github.com/ghuser/mall/services/item/application/subscribers"
	itemEvents "github.com/ghuser/mall/services/item/domain/events"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg).With("process", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("worker stopped with error", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // run has already released its resources
	}
	log.Info("worker stopped")
}

// run relays the outbox and projects events into Redis until ctx is
// cancelled. EventBus.Close waits for in-flight handlers.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer otelShutdown(context.WithoutCancel(ctx)) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	// The worker is the only process that runs the outbox forwarder.
	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		return fmt.Errorf("setup event bus: %w", err)
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		return fmt.Errorf("start forwarder: %w", err)
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	a := &app.Application{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
	}
	if err := registerSubscribers(ctx, a); err != nil {
		return fmt.Errorf("register subscribers: %w", err)
	}

	<-ctx.Done()
	log.Info("shutting down worker...")
	return nil
}

// registerSubscribers wires the read-model projections.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	carts := cache.NewCartCache(a.Redis)
	subs := map[string]events.Handler{
		cartEvents.TopicCartUpdated: cartSubscribers.HandleCartUpdated(carts, a.Logger),
		cartEvents.TopicCartDeleted: cartSubscribers.HandleCartDeleted(carts, a.Logger),
		itemEvents.TopicItemCreated: itemSubscribers.HandleItemCreated(cache.NewItemCache(a.Redis), a.Logger),
	}

	topics := make([]string, 0, len(subs))
	for topic, handler := range subs {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		go drain(ctx, a.Logger, topic, errCh)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// drain logs subscriber errors so the channel never blocks.
func drain(ctx context.Context, log logger.Logger, topic string, errCh <-chan error) {
	for err := range errCh {
		log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
		telemetry.ReportError(ctx, err)
	}
}
