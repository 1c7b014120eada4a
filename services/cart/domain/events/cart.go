package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// TopicCartUpdated is published whenever a cart is saved.
	TopicCartUpdated = "cart.updated"
	// TopicCartDeleted is published when a cart row is removed.
	TopicCartDeleted = "cart.deleted"
)

// CartLine is one item entry in a CartUpdatedEvent.
type CartLine struct {
	ItemID   string `json:"item_id"`
	Quantity uint32 `json:"quantity"`
}

// CartUpdatedEvent carries the full cart snapshot after a save so consumers
// can rebuild read models without querying Postgres.
type CartUpdatedEvent struct {
	EventID    uuid.UUID        `json:"event_id"`
	Version    int              `json:"version"`
	CartID     string           `json:"cart_id"`
	OwnerID    *uuid.UUID       `json:"owner_id,omitempty"`
	Status     string           `json:"status"`
	Lines      []CartLine       `json:"lines"`
	ItemsPrice *decimal.Decimal `json:"items_price,omitempty"`
	TotalPrice *decimal.Decimal `json:"total_price,omitempty"`
	ExpiresAt  *time.Time       `json:"expires_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// CartDeletedEvent tells read models to forget a cart and to ignore any
// cart.updated for it that is still in flight.
type CartDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	CartID     string    `json:"cart_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
