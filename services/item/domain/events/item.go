package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TopicItemCreated is the Watermill topic published when an Item is created.
const TopicItemCreated = "item.created"

// ItemCreatedEvent is published in the same transaction that inserts the Item.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicItemCreated).
type ItemCreatedEvent struct {
	EventID     uuid.UUID       `json:"event_id"` // deduplication key
	Version     int             `json:"version"`
	ItemID      uuid.UUID       `json:"item_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type"`
	Images      []string        `json:"images"`
	Description *string         `json:"description,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}
