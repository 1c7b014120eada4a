package services

import (
	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/services/item/infrastructure/persistence/postgres"
)

// Services is the application-layer container of the item service.
type Services struct {
	Item *ItemService
}

// New wires the item services from the shared Application.
func New(a *app.Application) *Services {
	repo := postgres.NewItemRepository(a.Db, a.EventBus)
	var itemCache ItemCache
	if a.Redis != nil {
		itemCache = cache.NewItemCache(a.Redis)
	}
	return &Services{
		Item: NewItemService(repo, itemCache, a.Logger),
	}
}
