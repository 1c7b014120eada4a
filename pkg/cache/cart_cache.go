package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CartCacheTTL bounds how long a cart snapshot stays in Redis. Snapshots
	// of carts that expire sooner are evicted at their ExpiresAt instead.
	CartCacheTTL = 24 * time.Hour

	// CartTombstoneTTL is how long a deleted cart keeps rejecting snapshots
	// that arrive after its deletion.
	CartTombstoneTTL = 24 * time.Hour
)

// ErrCartDeleted is returned by Get for a cart that carries a tombstone.
var ErrCartDeleted = errors.New("cart deleted")

// CachedCart is the cart read model. It is stored as a single JSON value
// because the line map changes as a whole on every save.
type CachedCart struct {
	ID         string            `json:"id"`
	OwnerID    *string           `json:"owner_id,omitempty"`
	Items      map[string]uint32 `json:"items"`
	ItemsPrice *string           `json:"items_price,omitempty"`
	TotalPrice *string           `json:"total_price,omitempty"`
	Status     string            `json:"status"`
	ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// "cart:{id}" is a hash: "v" holds UpdatedAt in unix microseconds, "data" the
// JSON snapshot. A deleted cart holds only "deleted".
const (
	fieldVersion = "v"
	fieldData    = "data"
	fieldDeleted = "deleted"
)

// setIfNewerScript writes the snapshot unless the cart is tombstoned or the
// stored snapshot is newer. Microseconds stay exact in a Lua number.
var setIfNewerScript = redis.NewScript(`
if redis.call("HEXISTS", KEYS[1], "deleted") == 1 then
	return 0
end
local current = tonumber(redis.call("HGET", KEYS[1], "v"))
if current and current > tonumber(ARGV[1]) then
	return 0
end
redis.call("HSET", KEYS[1], "v", ARGV[1], "data", ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
return 1
`)

var tombstoneScript = redis.NewScript(`
redis.call("DEL", KEYS[1])
redis.call("HSET", KEYS[1], "deleted", "1")
redis.call("PEXPIRE", KEYS[1], ARGV[1])
return 1
`)

// CartCache reads and writes "cart:{id}" snapshots.
type CartCache struct {
	client *RedisClient
}

func NewCartCache(r *RedisClient) *CartCache {
	return &CartCache{client: r}
}

// Get returns the cached cart, redis.Nil on a miss or ErrCartDeleted when the
// cart was deleted.
func (c *CartCache) Get(ctx context.Context, id string) (*CachedCart, error) {
	vals, err := c.client.Client().HMGet(ctx, cartKey(id), fieldDeleted, fieldData).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if vals[0] != nil {
		return nil, ErrCartDeleted
	}
	raw, ok := vals[1].(string)
	if !ok {
		return nil, redis.Nil
	}

	var cart CachedCart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("cache decode cart: %w", err)
	}
	return &cart, nil
}

// Set stores the snapshot unless a newer one is already cached or the cart
// was deleted, and reports whether it was written. The check and the write
// are one atomic step. Snapshots of expired carts are never written.
func (c *CartCache) Set(ctx context.Context, cart *CachedCart) (bool, error) {
	ttl := cartTTL(cart, time.Now())
	if ttl <= 0 {
		return false, nil
	}

	raw, err := json.Marshal(cart)
	if err != nil {
		return false, fmt.Errorf("cache encode cart: %w", err)
	}
	stored, err := setIfNewerScript.Run(ctx, c.client.Client(), []string{cartKey(cart.ID)},
		strconv.FormatInt(cart.UpdatedAt.UnixMicro(), 10), raw, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored == 1, nil
}

// Tombstone replaces any snapshot of id with a deletion marker.
func (c *CartCache) Tombstone(ctx context.Context, id string) error {
	if err := tombstoneScript.Run(ctx, c.client.Client(), []string{cartKey(id)},
		CartTombstoneTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("cache tombstone: %w", err)
	}
	return nil
}

func cartKey(id string) string {
	return "cart:" + id
}

func cartTTL(cart *CachedCart, at time.Time) time.Duration {
	if cart.ExpiresAt == nil {
		return CartCacheTTL
	}
	return min(cart.ExpiresAt.Sub(at), CartCacheTTL)
}
