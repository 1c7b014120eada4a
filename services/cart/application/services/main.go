package services

import (
	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/services/cart/infrastructure/persistence/postgres"
)

// Services is the application-layer container of the cart service.
type Services struct {
	Cart *CartService
}

// New wires the cart services from the shared Application.
func New(a *app.Application) *Services {
	repo := postgres.NewCartRepository(a.Db, a.EventBus)
	var cartCache CartCache
	if a.Redis != nil {
		cartCache = cache.NewCartCache(a.Redis)
	}
	return &Services{
		Cart: NewCartService(repo, a.CartLocker, cartCache, a.Logger),
	}
}
