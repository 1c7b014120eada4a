package subscribers

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/mall/pkg/events"
	"github.com/ghuser/mall/pkg/logger"
	domainevents "github.com/ghuser/mall/services/cart/domain/events"
)

// HandleCartDeleted tombstones "cart:{id}" so a cart.updated still in flight
// cannot bring the deleted cart back.
func HandleCartDeleted(c CartCache, log logger.Logger) events.Handler {
	return func(ctx context.Context, msg *message.Message) error {
		var evt domainevents.CartDeletedEvent
		if err := events.DecodeJSON(msg, &evt); err != nil || evt.CartID == "" {
			log.ErrorContext(ctx, "drop unusable cart.deleted", "message_id", msg.UUID, "error", err)
			return nil
		}
		if err := c.Tombstone(ctx, evt.CartID); err != nil {
			return fmt.Errorf("tombstone cart %s: %w", evt.CartID, err)
		}
		log.DebugContext(ctx, "cart tombstoned", "cart_id", evt.CartID)
		return nil
	}
}
