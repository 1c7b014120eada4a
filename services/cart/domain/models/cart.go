package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLifetime is how long a new cart stays valid. ExpiresAt is never refreshed.
const CartLifetime = 60 * 24 * time.Hour

// now is the aggregate's clock; tests replace it.
var now = func() time.Time { return time.Now().UTC() }

// Cart is the shopping-cart aggregate. It is not safe for concurrent use; the
// application service serializes mutations per cart.
type Cart struct {
	ID         CartID
	OwnerID    *uuid.UUID // nil for guest carts
	Items      map[ItemID]uint32
	ItemsPrice *decimal.Decimal
	TotalPrice *decimal.Decimal
	Status     CartStatus
	ExpiresAt  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewCart returns an empty active cart for ownerID (nil for a guest).
func NewCart(ownerID *uuid.UUID) *Cart {
	ts := now()
	expires := ts.Add(CartLifetime)
	zero := decimal.Zero

	return &Cart{
		ID:         NewCartID(),
		OwnerID:    ownerID,
		Items:      make(map[ItemID]uint32),
		ItemsPrice: &zero,
		TotalPrice: &zero,
		Status:     CartStatusActive,
		ExpiresAt:  &expires,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
}

// AddItem merges quantity into the existing line for id, saturating at the
// uint32 maximum, or inserts a new line. A zero quantity on an absent item
// inserts nothing. UpdatedAt is always refreshed.
func (c *Cart) AddItem(id ItemID, quantity uint32) {
	if c.Items == nil {
		c.Items = make(map[ItemID]uint32)
	}

	if old, ok := c.Items[id]; ok {
		c.Items[id] = saturatingAdd(old, quantity)
	} else if quantity > 0 {
		c.Items[id] = quantity
	}
	c.touch()
}

// RemoveItem deletes the line for id and reports whether it existed.
// UpdatedAt changes only when something was removed.
func (c *Cart) RemoveItem(id ItemID) bool {
	if _, ok := c.Items[id]; !ok {
		return false
	}
	delete(c.Items, id)
	c.touch()
	return true
}

// UpdateQuantity replaces the quantity of an existing line. Zero removes the
// line. It never inserts: an absent id yields false and leaves the cart as is.
func (c *Cart) UpdateQuantity(id ItemID, quantity uint32) bool {
	if quantity == 0 {
		return c.RemoveItem(id)
	}
	if _, ok := c.Items[id]; !ok {
		return false
	}
	c.Items[id] = quantity
	c.touch()
	return true
}

// Clear removes every line and always refreshes UpdatedAt.
func (c *Cart) Clear() {
	clear(c.Items)
	c.touch()
}

// IsEmpty reports whether the cart holds no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ItemCount is the number of distinct items.
func (c *Cart) ItemCount() int {
	return len(c.Items)
}

// TotalItems is the sum of all quantities.
func (c *Cart) TotalItems() uint64 {
	var total uint64
	for _, q := range c.Items {
		total += uint64(q)
	}
	return total
}

// IsExpired reports whether at is at or past ExpiresAt. Carts without an
// expiry never expire.
func (c *Cart) IsExpired(at time.Time) bool {
	return c.ExpiresAt != nil && !at.Before(*c.ExpiresAt)
}

// IsOwnedBy reports whether userID may act on the cart. Guest carts are open to anyone.
func (c *Cart) IsOwnedBy(userID *uuid.UUID) bool {
	if c.OwnerID == nil {
		return true
	}
	return userID != nil && *userID == *c.OwnerID
}

func (c *Cart) touch() {
	ts := now()
	if ts.Before(c.UpdatedAt) {
		ts = c.UpdatedAt
	}
	c.UpdatedAt = ts
}

func saturatingAdd(a, b uint32) uint32 {
	if a > math.MaxUint32-b {
		return math.MaxUint32
	}
	return a + b
}
