package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/domainerr"
	"github.com/ghuser/mall/pkg/logger"
	cartdomain "github.com/ghuser/mall/services/cart/domain"
	"github.com/ghuser/mall/services/cart/domain/models"
	"github.com/ghuser/mall/services/cart/domain/repositories"
)

// Locker serializes work on one key across processes.
type Locker interface {
	Lock(ctx context.Context, key string) (cache.Unlock, error)
}

// CartCache is the cart read model store. *cache.CartCache implements it.
// Set keeps the newer of two snapshots and refuses tombstoned carts; Get
// reports a tombstone as cache.ErrCartDeleted.
type CartCache interface {
	Get(ctx context.Context, id string) (*cache.CachedCart, error)
	Set(ctx context.Context, cart *cache.CachedCart) (bool, error)
	Tombstone(ctx context.Context, id string) error
}

// CartService runs cart use cases. Every mutation holds the per-cart lock
// from load to save; reads go through the cache.
type CartService struct {
	repo    repositories.CartRepository
	locker  Locker
	cache   CartCache
	log     logger.Logger
	metrics *cartMetrics
}

// NewCartService wires the service. cartCache may be nil.
func NewCartService(repo repositories.CartRepository, locker Locker, cartCache CartCache, log logger.Logger) *CartService {
	return &CartService{
		repo:    repo,
		locker:  locker,
		cache:   cartCache,
		log:     log,
		metrics: newCartMetrics(),
	}
}

// Create saves a new empty cart for ownerID, or a guest cart when ownerID is nil.
func (s *CartService) Create(ctx context.Context, ownerID *uuid.UUID) (*models.Cart, error) {
	cart := models.NewCart(ownerID)
	if err := s.repo.Save(ctx, cart); err != nil {
		s.metrics.record(ctx, opCreate, err)
		return nil, fmt.Errorf("save cart: %w", saveError(err))
	}
	s.metrics.record(ctx, opCreate, nil)
	s.warm(ctx, cart)
	return cart, nil
}

// Get returns the cart if caller may see it. A missing cart is reported as
// the storage NotFound error.
func (s *CartService) Get(ctx context.Context, id models.CartID, caller *uuid.UUID) (*models.Cart, error) {
	cart, err := s.read(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cart.IsOwnedBy(caller) {
		return nil, cartdomain.ErrCartAccessDenied
	}
	return cart, nil
}

// GetMine returns the most recently updated active cart of ownerID.
func (s *CartService) GetMine(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.GetActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get active cart: %w", err)
	}
	return cart, nil
}

// AddItem merges quantity into the cart line for itemID.
func (s *CartService) AddItem(ctx context.Context, id models.CartID, caller *uuid.UUID, itemID models.ItemID, quantity uint32) (*models.Cart, error) {
	if quantity == 0 {
		return nil, fmt.Errorf("%w: must be at least 1", cartdomain.ErrInvalidQuantity)
	}
	return s.mutate(ctx, opAddItem, id, caller, func(c *models.Cart) bool {
		c.AddItem(itemID, quantity)
		return true
	})
}

// UpdateQuantity sets the quantity of an existing line; zero removes it.
// applied is false when itemID is not in the cart.
func (s *CartService) UpdateQuantity(ctx context.Context, id models.CartID, caller *uuid.UUID, itemID models.ItemID, quantity uint32) (applied bool, cart *models.Cart, err error) {
	cart, err = s.mutate(ctx, opUpdateQuantity, id, caller, func(c *models.Cart) bool {
		applied = c.UpdateQuantity(itemID, quantity)
		return applied
	})
	return applied, cart, err
}

// RemoveItem drops the line for itemID. removed is false when it was absent.
func (s *CartService) RemoveItem(ctx context.Context, id models.CartID, caller *uuid.UUID, itemID models.ItemID) (removed bool, cart *models.Cart, err error) {
	cart, err = s.mutate(ctx, opRemoveItem, id, caller, func(c *models.Cart) bool {
		removed = c.RemoveItem(itemID)
		return removed
	})
	return removed, cart, err
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, id models.CartID, caller *uuid.UUID) (*models.Cart, error) {
	return s.mutate(ctx, opClear, id, caller, func(c *models.Cart) bool {
		c.Clear()
		return true
	})
}

// Delete removes the cart. Deleting a cart that no longer exists is a
// domain delete error.
func (s *CartService) Delete(ctx context.Context, id models.CartID, caller *uuid.UUID) (err error) {
	defer func() { s.metrics.record(ctx, opDelete, err) }()

	unlock, err := s.lock(ctx, id)
	if err != nil {
		return err
	}
	defer s.release(ctx, id, unlock)

	cart, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.NotFound()) {
			return domainerr.Delete(fmt.Sprintf("cart %s no longer exists", id))
		}
		return fmt.Errorf("load cart: %w", err)
	}
	if !cart.IsOwnedBy(caller) {
		return cartdomain.ErrCartAccessDenied
	}

	existed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if !existed {
		return domainerr.Delete(fmt.Sprintf("cart %s no longer exists", id))
	}

	// The worker tombstones the cart again from cart.deleted.
	if s.cache != nil {
		if err := s.cache.Tombstone(ctx, id.String()); err != nil {
			s.log.WarnContext(ctx, "cart cache tombstone failed", "cart_id", id, "error", err)
		}
	}
	return nil
}

// mutate loads the cart under its lock, applies fn and saves the result when
// fn reports a change.
func (s *CartService) mutate(ctx context.Context, op string, id models.CartID, caller *uuid.UUID, fn func(*models.Cart) bool) (_ *models.Cart, err error) {
	defer func() { s.metrics.record(ctx, op, err) }()

	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.release(ctx, id, unlock)

	cart, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !cart.IsOwnedBy(caller) {
		return nil, cartdomain.ErrCartAccessDenied
	}

	if !fn(cart) {
		return cart, nil
	}

	if err := s.repo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("save cart: %w", saveError(err))
	}
	s.warm(ctx, cart)
	return cart, nil
}

func (s *CartService) lock(ctx context.Context, id models.CartID) (cache.Unlock, error) {
	start := time.Now()
	unlock, err := s.locker.Lock(ctx, id.String())
	s.metrics.lockWait(ctx, time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cartdomain.ErrCartLocked, err)
	}
	return unlock, nil
}

func (s *CartService) release(ctx context.Context, id models.CartID, unlock cache.Unlock) {
	// The request context may already be done; the lock must still go.
	if err := unlock(context.WithoutCancel(ctx)); err != nil {
		s.log.WarnContext(ctx, "cart unlock failed", "cart_id", id, "error", err)
	}
}

// read is a read-through lookup: cache first, then Postgres, warming the
// cache on a miss. Cache failures only cost a database round trip.
func (s *CartService) read(ctx context.Context, id models.CartID) (*models.Cart, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id.String())
		switch {
		case err == nil:
			cart, convErr := fromCached(cached)
			if convErr == nil {
				return cart, nil
			}
			s.log.WarnContext(ctx, "discarding unreadable cart snapshot", "cart_id", id, "error", convErr)
		case errors.Is(err, cache.ErrCartDeleted):
			return nil, fmt.Errorf("get cart: %w", database.NotFound())
		case !errors.Is(err, redis.Nil):
			s.log.WarnContext(ctx, "cart cache read failed", "cart_id", id, "error", err)
		}
	}

	cart, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	s.warm(ctx, cart)
	return cart, nil
}

func (s *CartService) warm(ctx context.Context, cart *models.Cart) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Set(ctx, toCached(cart)); err != nil {
		s.log.WarnContext(ctx, "cart cache write failed", "cart_id", cart.ID, "error", err)
	}
}

// saveError folds a storage failure met while saving into a domain save error.
func saveError(err error) error {
	return database.ToDomain(database.Classify(err))
}
