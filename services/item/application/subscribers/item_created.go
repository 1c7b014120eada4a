package subscribers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/pkg/events"
	"github.com/ghuser/mall/pkg/logger"
	domainevents "github.com/ghuser/mall/services/item/domain/events"
)

// ItemCache is the subset of *cache.ItemCache the projection needs.
type ItemCache interface {
	Set(ctx context.Context, item *cache.CachedItem) error
}

// HandleItemCreated warms "item:{id}" from an item.created event. Items are
// immutable after creation, so replays are harmless.
func HandleItemCreated(c ItemCache, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt domainevents.ItemCreatedEvent
		if err := events.DecodeJSON(msg, &evt); err != nil {
			log.ErrorContext(ctx, "drop undecodable item.created", "message_id", msg.UUID, "error", err)
			return nil
		}
		if evt.ItemID == uuid.Nil {
			log.ErrorContext(ctx, "drop item.created without item id", "message_id", msg.UUID)
			return nil
		}

		if err := c.Set(ctx, &cache.CachedItem{
			ID:          evt.ItemID,
			Name:        evt.Name,
			Price:       evt.Price,
			Type:        evt.Type,
			Images:      evt.Images,
			Description: evt.Description,
			CreatedAt:   evt.OccurredAt,
			UpdatedAt:   evt.OccurredAt,
		}); err != nil {
			return fmt.Errorf("warm item %s: %w", evt.ItemID, err)
		}

		log.InfoContext(ctx, "item cache warmed", "item_id", evt.ItemID)
		return nil
	}
}
