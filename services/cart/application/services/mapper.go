package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/mall/pkg/cache"
	"github.com/ghuser/mall/services/cart/domain/models"
)

func toCached(c *models.Cart) *cache.CachedCart {
	out := &cache.CachedCart{
		ID:        c.ID.String(),
		Items:     make(map[string]uint32, len(c.Items)),
		Status:    c.Status.String(),
		ExpiresAt: c.ExpiresAt,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.OwnerID != nil {
		owner := c.OwnerID.String()
		out.OwnerID = &owner
	}
	for id, q := range c.Items {
		out.Items[id.String()] = q
	}
	out.ItemsPrice = decimalString(c.ItemsPrice)
	out.TotalPrice = decimalString(c.TotalPrice)
	return out
}

func fromCached(cc *cache.CachedCart) (*models.Cart, error) {
	id, err := models.ParseCartID(cc.ID)
	if err != nil {
		return nil, err
	}
	status, err := models.ParseCartStatus(cc.Status)
	if err != nil {
		return nil, err
	}

	cart := &models.Cart{
		ID:        id,
		Items:     make(map[models.ItemID]uint32, len(cc.Items)),
		Status:    status,
		ExpiresAt: cc.ExpiresAt,
		CreatedAt: cc.CreatedAt,
		UpdatedAt: cc.UpdatedAt,
	}
	if cc.OwnerID != nil {
		owner, err := uuid.Parse(*cc.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("owner id: %w", err)
		}
		cart.OwnerID = &owner
	}
	for k, q := range cc.Items {
		if q > 0 {
			cart.Items[models.ItemID(k)] = q
		}
	}
	if cart.ItemsPrice, err = parseDecimal(cc.ItemsPrice); err != nil {
		return nil, fmt.Errorf("items price: %w", err)
	}
	if cart.TotalPrice, err = parseDecimal(cc.TotalPrice); err != nil {
		return nil, fmt.Errorf("total price: %w", err)
	}
	return cart, nil
}

func decimalString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
