// Package subscribers holds the cart read-model projections run by the worker.
package subscribers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/events"
	"github.com/ghuser/mall/pkg/logger"
	domainevents "github.com/ghuser/mall/services/cart/domain/events"
)

// CartCache is the subset of *cache.CartCache the projections need. Set is
// an atomic compare-and-set on UpdatedAt that also refuses tombstoned carts.
type CartCache interface {
	Set(ctx context.Context, cart *cache.CachedCart) (bool, error)
	Tombstone(ctx context.Context, id string) error
}

// HandleCartUpdated rebuilds "cart:{id}" from a cart.updated snapshot.
// Snapshots older than the cached one, or of a deleted cart, are dropped, so
// redelivery and reordering never roll the cache back.
func HandleCartUpdated(c CartCache, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt domainevents.CartUpdatedEvent
		if err := events.DecodeJSON(msg, &evt); err != nil {
			// Poison message: retrying cannot fix it.
			log.ErrorContext(ctx, "drop undecodable cart.updated", "message_id", msg.UUID, "error", err)
			return nil
		}

		stored, err := c.Set(ctx, snapshot(evt))
		if err != nil {
			return fmt.Errorf("project cart %s: %w", evt.CartID, err)
		}
		if !stored {
			log.DebugContext(ctx, "stale or deleted cart.updated skipped", "cart_id", evt.CartID)
			return nil
		}
		log.DebugContext(ctx, "cart projected", "cart_id", evt.CartID, "lines", len(evt.Lines))
		return nil
	}
}

func snapshot(evt domainevents.CartUpdatedEvent) *cache.CachedCart {
	out := &cache.CachedCart{
		ID:        evt.CartID,
		Items:     make(map[string]uint32, len(evt.Lines)),
		Status:    evt.Status,
		ExpiresAt: evt.ExpiresAt,
		CreatedAt: evt.CreatedAt,
		UpdatedAt: evt.UpdatedAt,
	}
	if evt.OwnerID != nil {
		owner := evt.OwnerID.String()
		out.OwnerID = &owner
	}
	for _, l := range evt.Lines {
		out.Items[l.ItemID] = l.Quantity
	}
	if evt.ItemsPrice != nil {
		s := evt.ItemsPrice.String()
		out.ItemsPrice = &s
	}
	if evt.TotalPrice != nil {
		s := evt.TotalPrice.String()
		out.TotalPrice = &s
	}
	return out
}
