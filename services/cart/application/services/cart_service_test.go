package services

import (
	"context"
	"errors"
	"maps"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/domainerr"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/events"
	"github.com/ghuser/mall/pkg/logger"
	"github.com/ghuser/mall/services/cart/application/subscribers"
	cartdomain "github.com/ghuser/mall/services/cart/domain"
	"github.com/ghuser/mall/services/cart/domain/models"
	"github.com/ghuser/mall/services/cart/infrastructure/persistence/postgres"
)

// fakeRepo stores copies so a mutation is only visible after Save.
type fakeRepo struct {
	mu      sync.Mutex
	carts   map[models.CartID]*models.Cart
	saveErr error
	saves   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{carts: make(map[models.CartID]*models.Cart)}
}

func clone(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = maps.Clone(c.Items)
	return &cp
}

func (r *fakeRepo) Save(_ context.Context, c *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.carts[c.ID] = clone(c)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id models.CartID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, database.NotFound()
	}
	return clone(c), nil
}

func (r *fakeRepo) GetActiveByOwner(_ context.Context, owner uuid.UUID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.OwnerID != nil && *c.OwnerID == owner && c.Status == models.CartStatusActive {
			return clone(c), nil
		}
	}
	return nil, database.NotFound()
}

func (r *fakeRepo) Delete(_ context.Context, id models.CartID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.carts[id]
	delete(r.carts, id)
	return ok, nil
}

type memLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	err   error
}

func (l *memLocker) Lock(_ context.Context, key string) (cache.Unlock, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func(context.Context) error {
		m.Unlock()
		return nil
	}, nil
}

// memCache behaves like the Redis cart cache: Set is a compare-and-set on
// UpdatedAt and tombstoned ids reject every write.
type memCache struct {
	mu      sync.Mutex
	carts   map[string]*cache.CachedCart
	deleted map[string]bool
	getErr  error
}

func (c *memCache) Get(_ context.Context, id string) (*cache.CachedCart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.deleted[id] {
		return nil, cache.ErrCartDeleted
	}
	cc, ok := c.carts[id]
	if !ok {
		return nil, redis.Nil
	}
	return cc, nil
}

func (c *memCache) Set(_ context.Context, cc *cache.CachedCart) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted[cc.ID] {
		return false, nil
	}
	if cur, ok := c.carts[cc.ID]; ok && cur.UpdatedAt.After(cc.UpdatedAt) {
		return false, nil
	}
	if c.carts == nil {
		c.carts = make(map[string]*cache.CachedCart)
	}
	c.carts[cc.ID] = cc
	return true, nil
}

func (c *memCache) Tombstone(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted == nil {
		c.deleted = make(map[string]bool)
	}
	delete(c.carts, id)
	c.deleted[id] = true
	return nil
}

func newTestService(t *testing.T) (*CartService, *fakeRepo, *memCache) {
	t.Helper()
	repo := newFakeRepo()
	c := &memCache{}
	svc := NewCartService(repo, &memLocker{}, c, logger.New(&config.Config{LogLevel: "error"}))
	return svc, repo, c
}

func TestCartService_AddItemMerges(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cart, err := svc.Create(ctx, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.AddItem(ctx, cart.ID, nil, "item1", 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	got, err := svc.AddItem(ctx, cart.ID, nil, "item1", 3)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if got.Items["item1"] != 5 || got.ItemCount() != 1 || got.TotalItems() != 5 {
		t.Fatalf("got items=%v count=%d total=%d", got.Items, got.ItemCount(), got.TotalItems())
	}
}

func TestCartService_AddItemZeroQuantity(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	cart, _ := svc.Create(ctx, nil)

	_, err := svc.AddItem(ctx, cart.ID, nil, "item1", 0)
	if !errors.Is(err, cartdomain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestCartService_UpdateQuantity(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	cart, _ := svc.Create(ctx, nil)
	_, _ = svc.AddItem(ctx, cart.ID, nil, "item1", 1)

	t.Run("zero removes the line", func(t *testing.T) {
		applied, got, err := svc.UpdateQuantity(ctx, cart.ID, nil, "item1", 0)
		if err != nil || !applied {
			t.Fatalf("applied=%v err=%v", applied, err)
		}
		if _, ok := got.Items["item1"]; ok {
			t.Fatal("item1 must be gone")
		}
	})

	t.Run("absent item is not applied and not saved", func(t *testing.T) {
		before := repo.saves
		applied, got, err := svc.UpdateQuantity(ctx, cart.ID, nil, "ghost", 4)
		if err != nil || applied {
			t.Fatalf("applied=%v err=%v", applied, err)
		}
		if !got.IsEmpty() {
			t.Fatalf("cart changed: %v", got.Items)
		}
		if repo.saves != before {
			t.Fatal("unchanged cart must not be saved")
		}
	})
}

func TestCartService_RemoveAndClear(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	cart, _ := svc.Create(ctx, nil)
	_, _ = svc.AddItem(ctx, cart.ID, nil, "a", 1)
	_, _ = svc.AddItem(ctx, cart.ID, nil, "b", 2)

	removed, got, err := svc.RemoveItem(ctx, cart.ID, nil, "a")
	if err != nil || !removed || got.ItemCount() != 1 {
		t.Fatalf("remove: removed=%v count=%d err=%v", removed, got.ItemCount(), err)
	}
	removed, _, err = svc.RemoveItem(ctx, cart.ID, nil, "a")
	if err != nil || removed {
		t.Fatalf("second remove: removed=%v err=%v", removed, err)
	}

	got, err = svc.Clear(ctx, cart.ID, nil)
	if err != nil || !got.IsEmpty() {
		t.Fatalf("clear: items=%v err=%v", got.Items, err)
	}
}

func TestCartService_Ownership(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()
	cart, _ := svc.Create(ctx, &owner)

	if _, err := svc.Get(ctx, cart.ID, &owner); err != nil {
		t.Fatalf("owner Get: %v", err)
	}

	tests := []struct {
		name   string
		caller *uuid.UUID
	}{
		{"stranger", &stranger},
		{"guest", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Get(ctx, cart.ID, tt.caller); !errors.Is(err, cartdomain.ErrCartAccessDenied) {
				t.Fatalf("Get: expected ErrCartAccessDenied, got %v", err)
			}
			if _, err := svc.AddItem(ctx, cart.ID, tt.caller, "x", 1); !errors.Is(err, cartdomain.ErrCartAccessDenied) {
				t.Fatalf("AddItem: expected ErrCartAccessDenied, got %v", err)
			}
			if err := svc.Delete(ctx, cart.ID, tt.caller); !errors.Is(err, cartdomain.ErrCartAccessDenied) {
				t.Fatalf("Delete: expected ErrCartAccessDenied, got %v", err)
			}
		})
	}
}

func TestCartService_GetMine(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	if _, err := svc.GetMine(ctx, owner); errhttp.Resolve(err).Status() != 404 {
		t.Fatalf("expected 404 before any cart exists, got %v", err)
	}

	cart, _ := svc.Create(ctx, &owner)
	got, err := svc.GetMine(ctx, owner)
	if err != nil || got.ID != cart.ID {
		t.Fatalf("GetMine: got %v err=%v", got, err)
	}
}

func TestCartService_GetReadThrough(t *testing.T) {
	svc, repo, c := newTestService(t)
	ctx := context.Background()
	cart, _ := svc.Create(ctx, nil)

	if _, ok := c.carts[cart.ID.String()]; !ok {
		t.Fatal("create must warm the cache")
	}

	// Drop the row: a cached snapshot is still served.
	delete(repo.carts, cart.ID)
	if _, err := svc.Get(ctx, cart.ID, nil); err != nil {
		t.Fatalf("cached Get: %v", err)
	}

	// A broken cache falls back to the repository.
	c.getErr = errors.New("redis down")
	_, err := svc.Get(ctx, cart.ID, nil)
	if !errors.Is(err, database.NotFound()) {
		t.Fatalf("expected storage NotFound, got %v", err)
	}
	if got := errhttp.Resolve(err); got.Status() != 404 || got.Type() != "Not found" {
		t.Fatalf("transport: got %d %q", got.Status(), got.Type())
	}
}

func TestCartService_SaveFailureIsDomainSaveError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.saveErr = database.Classify(&pgconn.PgError{Code: "23505", Message: "dup key"})

	_, err := svc.Create(context.Background(), nil)

	var de *domainerr.Error
	if !errors.As(err, &de) || de.Kind != domainerr.KindSave || de.Detail != "Duplicate:dup key" {
		t.Fatalf("expected Save(Duplicate:dup key), got %v", err)
	}
	if got := errhttp.Resolve(err); got.Status() != 400 || got.Type() != "Save error" {
		t.Fatalf("transport: got %d %q", got.Status(), got.Type())
	}
}

func TestCartService_MissingCartOnMutation(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.AddItem(context.Background(), "nope", nil, "x", 1)
	if got := errhttp.Resolve(err); got.Status() != 404 {
		t.Fatalf("expected 404, got %d (%v)", got.Status(), err)
	}
}

func TestCartService_Delete(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()
	cart, _ := svc.Create(ctx, nil)

	if err := svc.Delete(ctx, cart.ID, nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.carts[cart.ID.String()]; ok || !c.deleted[cart.ID.String()] {
		t.Fatal("delete must replace the cache entry with a tombstone")
	}
	if _, err := svc.Get(ctx, cart.ID, nil); errhttp.Resolve(err).Status() != 404 {
		t.Fatalf("Get after delete: expected 404, got %v", err)
	}

	err := svc.Delete(ctx, cart.ID, nil)
	var de *domainerr.Error
	if !errors.As(err, &de) || de.Kind != domainerr.KindDelete {
		t.Fatalf("expected domain delete error, got %v", err)
	}
	if got := errhttp.Resolve(err); got.Status() != 400 || got.Type() != "Delete error" {
		t.Fatalf("transport: got %d %q", got.Status(), got.Type())
	}
}

// A cart.updated written before the delete may reach the worker after it.
func TestCartService_DeletedCartStaysGone(t *testing.T) {
	svc, _, c := newTestService(t)
	ctx := context.Background()
	log := logger.New(&config.Config{LogLevel: "error"})

	cart, err := svc.Create(ctx, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	cart, err = svc.AddItem(ctx, cart.ID, nil, "sku-1", 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	msg, err := events.NewJSONMessage(postgres.NewCartUpdatedEvent(cart, time.Now()))
	if err != nil {
		t.Fatalf("NewJSONMessage: %v", err)
	}

	if err := svc.Delete(ctx, cart.ID, nil); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := subscribers.HandleCartUpdated(c, log)(ctx, msg); err != nil {
		t.Fatalf("HandleCartUpdated: %v", err)
	}

	_, err = svc.Get(ctx, cart.ID, nil)
	if got := errhttp.Resolve(err); got.Status() != 404 || got.Type() != "Not found" {
		t.Fatalf("expected 404 Not found, got %v", err)
	}
}

func TestCartService_LockUnavailable(t *testing.T) {
	repo := newFakeRepo()
	locker := &memLocker{err: cache.ErrLockNotAcquired}
	svc := NewCartService(repo, locker, nil, logger.New(&config.Config{LogLevel: "error"}))
	ctx := context.Background()
	cart, _ := svc.Create(ctx, nil)

	_, err := svc.AddItem(ctx, cart.ID, nil, "x", 1)
	if !errors.Is(err, cartdomain.ErrCartLocked) || !errors.Is(err, cache.ErrLockNotAcquired) {
		t.Fatalf("expected ErrCartLocked wrapping the lock error, got %v", err)
	}
	if got := errhttp.Resolve(err); got.Status() != 502 {
		t.Fatalf("expected 502, got %d", got.Status())
	}
}

func TestCartService_ConcurrentAddsAreSerialized(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	cart, _ := svc.Create(ctx, nil)

	const workers = 50
	var g errgroup.Group
	for range workers {
		g.Go(func() error {
			_, err := svc.AddItem(ctx, cart.ID, nil, "item1", 1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	got, _ := repo.GetByID(ctx, cart.ID)
	if got.Items["item1"] != workers {
		t.Fatalf("lost updates: got %d, want %d", got.Items["item1"], workers)
	}
}

func TestCachedCartMapping(t *testing.T) {
	owner := uuid.New()
	cart := models.NewCart(&owner)
	cart.AddItem("sku", 7)

	back, err := fromCached(toCached(cart))
	if err != nil {
		t.Fatalf("fromCached: %v", err)
	}
	if back.ID != cart.ID || *back.OwnerID != owner || back.Items["sku"] != 7 {
		t.Fatalf("got %+v", back)
	}
	if !back.ItemsPrice.Equal(*cart.ItemsPrice) || back.Status != cart.Status {
		t.Fatalf("got %+v", back)
	}

	if _, err := fromCached(&cache.CachedCart{ID: "x", Status: "bogus"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}
