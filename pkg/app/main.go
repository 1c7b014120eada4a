// Package app holds the shared infrastructure handed to every service's
// route registration.
package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/events"
	"github.com/ghuser/mall/pkg/logger"
)

// Application is built once in main and passed to each service's Routes
// function. Log with the *Context methods so trace and request ids are kept:
//
//	app.Logger.InfoContext(ctx, "cart saved", "cart_id", id)
type Application struct {
	Config       *config.Config
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	CartLocker   *cache.RedisLocker
	SessionStore sessions.Store // nil in the worker process
}

// CartLockPrefix namespaces the per-cart lock keys in Redis.
const CartLockPrefix = "lock:cart:"

// NewCartLocker builds the per-cart lock from the lock settings in cfg.
func NewCartLocker(r *cache.RedisClient, cfg *config.Config) *cache.RedisLocker {
	return cache.NewRedisLocker(r, CartLockPrefix, cfg.CartLockTTL, cfg.CartLockWait)
}
