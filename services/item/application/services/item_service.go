package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/logger"
	itemdomain "github.com/ghuser/mall/services/item/domain"
	"github.com/ghuser/mall/services/item/domain/models"
	"github.com/ghuser/mall/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/mall/services/item/domain/services"
)

// ItemCache is the item read model store. *cache.ItemCache implements it.
type ItemCache interface {
	Get(ctx context.Context, id uuid.UUID) (*cache.CachedItem, error)
	Set(ctx context.Context, item *cache.CachedItem) error
}

// CreateItemInput carries the raw fields of a new catalogue item.
type CreateItemInput struct {
	Name        string
	Price       decimal.Decimal
	Type        string
	Images      []string
	Description *string
}

// ItemService orchestrates creation and retrieval of Items. The repository
// publishes item.created in the insert transaction.
type ItemService struct {
	repo  repositories.ItemRepository
	cache ItemCache
	log   logger.Logger
}

// NewItemService wires the service. itemCache may be nil.
func NewItemService(repo repositories.ItemRepository, itemCache ItemCache, log logger.Logger) *ItemService {
	return &ItemService{repo: repo, cache: itemCache, log: log}
}

// Create validates and persists an Item. Storage failures come back as a
// domain save error, so a duplicate item is a 400 rather than a 409.
func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	name, err := models.NewItemName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}
	typ, err := models.ParseItemType(in.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemType, err)
	}

	item, err := models.NewItem(name, in.Price, typ, in.Images, in.Description)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidPrice, err)
	}

	if err := domainsvcs.ValidateItemForCreation(item); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", database.ToDomain(database.Classify(err)))
	}

	s.warm(ctx, item)
	return item, nil
}

// GetByID reads through the cache. A missing item is the storage NotFound error.
func (s *ItemService) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		switch {
		case err == nil:
			return fromCached(cached), nil
		case !errors.Is(err, redis.Nil):
			s.log.WarnContext(ctx, "item cache read failed", "item_id", id, "error", err)
		}
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	s.warm(ctx, item)
	return item, nil
}

func (s *ItemService) warm(ctx context.Context, item *models.Item) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, ToCached(item)); err != nil {
		s.log.WarnContext(ctx, "item cache write failed", "item_id", item.ID, "error", err)
	}
}

// ToCached converts an item to its cached read model.
func ToCached(item *models.Item) *cache.CachedItem {
	return &cache.CachedItem{
		ID:          item.ID,
		Name:        item.Name.String(),
		Price:       item.Price,
		Type:        item.Type.String(),
		Images:      item.Images,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func fromCached(c *cache.CachedItem) *models.Item {
	return &models.Item{
		ID:          c.ID,
		Name:        models.ItemName(c.Name),
		Price:       c.Price,
		Type:        models.ItemType(c.Type),
		Images:      c.Images,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
