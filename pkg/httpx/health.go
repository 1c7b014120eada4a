package httpx

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, cache.RedisClient and events.EventBus all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks holds the set of dependencies to check in the health endpoint.
type HealthChecks struct {
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"     example:"ok"`
	Message   string `json:"message"    example:"all dependencies reachable"`
	Timestamp string `json:"timestamp"  example:"2025-01-15T10:30:00Z"`
	Database  string `json:"database"   example:"ok"`
	Redis     string `json:"redis"      example:"ok"`
	EventBus  string `json:"event_bus"  example:"ok"`
} // @name HealthResponse

// now is replaced in tests.
var now = time.Now

// HealthHandler returns an http.HandlerFunc that checks all registered
// HealthCheckers and reports degraded status if any of them fail.
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	targets := []struct {
		checker HealthChecker
		field   func(*HealthResponse) *string
	}{
		{checks.Database, func(r *HealthResponse) *string { return &r.Database }},
		{checks.Redis, func(r *HealthResponse) *string { return &r.Redis }},
		{checks.EventBus, func(r *HealthResponse) *string { return &r.EventBus }},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{
			Status:    "ok",
			Message:   "all dependencies reachable",
			Timestamp: now().UTC().Format(time.RFC3339),
		}

		for _, p := range targets {
			*p.field(&resp) = "ok"
			if p.checker == nil {
				*p.field(&resp) = "disabled"
				continue
			}
			if err := p.checker.Ping(ctx); err != nil {
				resp.Status = "degraded"
				resp.Message = "one or more dependencies unreachable"
				*p.field(&resp) = "unreachable"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		JSON(w, status, resp)
	}
}
