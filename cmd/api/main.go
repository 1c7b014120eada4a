package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/mall/docs/swagger"
	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/events"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	"github.com/ghuser/mall/pkg/telemetry"
	cartApi "github.com/ghuser/mall/services/cart/application/api"
	itemApi "github.com/ghuser/mall/services/item/application/api"
	userApi "github.com/ghuser/mall/services/user/application/api"
)

const shutdownTimeout = 30 * time.Second

// @title			Mall API
// @version		1.0
// @description	Shopping cart, catalogue and account API of the mall backend.
// @contact.name	API Support
// @contact.email	support@example.com
// @license.name	MIT
// @license.url	https://opensource.org/licenses/MIT
// @host			localhost:8080
// @BasePath		/api
// @schemes		http https
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

	log := logger.New(cfg).With("process", "api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api stopped with error", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // run has already released its resources
	}
	log.Info("api stopped")
}

// run wires the dependencies, serves HTTP until ctx is cancelled and then
// drains in-flight requests. Every resource it opens is closed before it
// returns.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	defer otelShutdown(context.WithoutCancel(ctx)) //nolint:errcheck

	// Crash reporting is optional.
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	db, err := database.NewPool(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	// Writes land on the outbox topic; cmd/worker runs the forwarder.
	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		return fmt.Errorf("setup event bus: %w", err)
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	a := &app.Application{
		Config:     cfg,
		Db:         db,
		Logger:     log,
		EventBus:   eventBus,
		Redis:      redisClient,
		CartLocker: app.NewCartLocker(redisClient, cfg),
		SessionStore: auth.NewSessionStore(
			redisClient.Client(),
			[]byte(cfg.SessionAuthKey),
			[]byte(cfg.SessionEncryptionKey),
			cfg.Environment == config.EnvProduction,
		),
	}

	srv := httpx.NewServer(cfg.HTTPAddr, newRouter(cfg, a, metricsHandler))

	serveErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	return nil
}

func newRouter(cfg *config.Config, a *app.Application, metrics http.Handler) http.Handler {
	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		httpx.Middlewares{
			Recovery: logger.Recovery(a.Logger),
			Sentry:   telemetry.SentryMiddleware(),
			Otel:     otelhttp.NewMiddleware(cfg.ServiceName),
			Logger:   logger.Middleware(a.Logger),
		},
	)

	r.Get("/health", httpx.HealthHandler(httpx.HealthChecks{
		Database: a.Db,
		Redis:    a.Redis,
		EventBus: a.EventBus,
	}))
	r.Handle("/metrics", metrics)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		registerRoutes(r, a)
	})
	return r
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	cartApi.CartRoutes(r, a)
	itemApi.ItemRoutes(r, a)
	userApi.UserRoutes(r, a)
}
