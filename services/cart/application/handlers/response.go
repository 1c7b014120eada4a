package handlers

import (
	"cmp"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/mall/services/cart/domain/models"
)

// CartLineResponse is one item line of a cart.
type CartLineResponse struct {
	ItemID   string `json:"item_id"  example:"sku-1001"`
	Quantity uint32 `json:"quantity" example:"2"`
} // @name CartLine

// CartResponse is the JSON view of a cart.
type CartResponse struct {
	ID         string             `json:"id"                 example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	OwnerID    *uuid.UUID         `json:"owner_id,omitempty" example:"550e8400-e29b-41d4-a716-446655440000"`
	Items      []CartLineResponse `json:"items"`
	ItemCount  int                `json:"item_count"         example:"1"`
	TotalItems uint64             `json:"total_items"        example:"2"`
	ItemsPrice *decimal.Decimal   `json:"items_price"        swaggertype:"string" example:"0"`
	TotalPrice *decimal.Decimal   `json:"total_price"        swaggertype:"string" example:"0"`
	Status     string             `json:"status"             example:"active"`
	Expired    bool               `json:"expired"            example:"false"`
	ExpiresAt  *time.Time         `json:"expires_at"         example:"2026-03-01T10:30:00Z"`
	CreatedAt  time.Time          `json:"created_at"         example:"2026-01-01T10:30:00Z"`
	UpdatedAt  time.Time          `json:"updated_at"         example:"2026-01-01T10:31:00Z"`
} // @name Cart

// now is the clock used for the expired flag.
var now = time.Now

func toCartResponse(c *models.Cart) CartResponse {
	lines := make([]CartLineResponse, 0, len(c.Items))
	for id, q := range c.Items {
		lines = append(lines, CartLineResponse{ItemID: id.String(), Quantity: q})
	}
	slices.SortFunc(lines, func(a, b CartLineResponse) int {
		return cmp.Compare(a.ItemID, b.ItemID)
	})

	return CartResponse{
		ID:         c.ID.String(),
		OwnerID:    c.OwnerID,
		Items:      lines,
		ItemCount:  c.ItemCount(),
		TotalItems: c.TotalItems(),
		ItemsPrice: c.ItemsPrice,
		TotalPrice: c.TotalPrice,
		Status:     c.Status.String(),
		Expired:    c.IsExpired(now()),
		ExpiresAt:  c.ExpiresAt,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// UpdateQuantityResponse reports whether the quantity change applied.
type UpdateQuantityResponse struct {
	Applied bool         `json:"applied" example:"true"`
	Cart    CartResponse `json:"cart"`
} // @name UpdateQuantityResponse

// RemoveItemResponse reports whether the line existed.
type RemoveItemResponse struct {
	Removed bool         `json:"removed" example:"true"`
	Cart    CartResponse `json:"cart"`
} // @name RemoveItemResponse
