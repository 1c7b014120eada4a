package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// ItemCacheTTL is the time-to-live for cached items.
const ItemCacheTTL = 24 * time.Hour

// CachedItem is the denormalized item read model stored in Redis as a hash.
type CachedItem struct {
	ID          uuid.UUID
	Name        string
	Price       decimal.Decimal
	Type        string
	Images      []string
	Description *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemCache reads and writes "item:{id}" hashes.
type ItemCache struct {
	client *RedisClient
}

func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r}
}

// Get returns the cached item or redis.Nil on a miss.
func (c *ItemCache) Get(ctx context.Context, id uuid.UUID) (*CachedItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, itemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}
	return decodeItem(vals)
}

// Set writes the item hash and its TTL in one pipeline.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) error {
	fields, err := encodeItem(item)
	if err != nil {
		return err
	}

	key := itemKey(item.ID)
	pipe := c.client.Client().Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ItemCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *ItemCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Client().Del(ctx, itemKey(id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func itemKey(id uuid.UUID) string {
	return "item:" + id.String()
}

func encodeItem(item *CachedItem) (map[string]any, error) {
	images, err := json.Marshal(item.Images)
	if err != nil {
		return nil, fmt.Errorf("cache encode images: %w", err)
	}
	fields := map[string]any{
		"id":         item.ID.String(),
		"name":       item.Name,
		"price":      item.Price.String(),
		"type":       item.Type,
		"images":     string(images),
		"created_at": item.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": item.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if item.Description != nil {
		fields["description"] = *item.Description
	}
	return fields, nil
}

func decodeItem(vals map[string]string) (*CachedItem, error) {
	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	price, err := decimal.NewFromString(vals["price"])
	if err != nil {
		return nil, fmt.Errorf("cache parse price: %w", err)
	}
	var images []string
	if err := json.Unmarshal([]byte(vals["images"]), &images); err != nil {
		return nil, fmt.Errorf("cache parse images: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}

	item := &CachedItem{
		ID:        id,
		Name:      vals["name"],
		Price:     price,
		Type:      vals["type"],
		Images:    images,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if d, ok := vals["description"]; ok {
		item.Description = &d
	}
	return item, nil
}
