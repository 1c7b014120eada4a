package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/mall/pkg/config"
)

const sentryFlushTimeout = 2 * time.Second

func sentryOptions(cfg *config.Config) sentry.ClientOptions {
	release := cfg.ServiceName
	if cfg.ServiceVersion != "" {
		release += "@" + cfg.ServiceVersion
	}
	return sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          release,
		ServerName:       cfg.ServiceName,
		TracesSampleRate: cfg.TraceSampling,
		AttachStacktrace: true,
	}
}

// SetupSentry initializes the Sentry SDK. It does nothing without a DSN.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentryOptions(cfg)); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

// SentryFlush waits briefly for buffered events before the process exits.
func SentryFlush() {
	sentry.Flush(sentryFlushTimeout)
}

// ReportError captures err on the request hub when there is one, else on the
// global hub. The active trace id is attached as a tag so the event can be
// matched with its trace.
func ReportError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			scope.SetTag("trace_id", sc.TraceID().String())
		}
		hub.CaptureException(err)
	})
}

// SentryMiddleware binds a hub to each request and reports panics. It
// re-panics so Recovery still writes the 500.
func SentryMiddleware() func(http.Handler) http.Handler {
	return sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: sentryFlushTimeout}).Handle
}
