package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is the core aggregate for the catalogue bounded context.
type Item struct {
	ID          uuid.UUID
	Name        ItemName
	Price       decimal.Decimal
	Type        ItemType
	Images      []string
	Description *string // usage notes, optional
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItem constructs a valid Item aggregate with generated ID and current timestamp.
// Prices are non-negative with at most two fractional digits.
func NewItem(name ItemName, price decimal.Decimal, typ ItemType, images []string, description *string) (*Item, error) {
	if price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative")
	}
	if price.Exponent() < -2 && !price.Equal(price.Round(2)) {
		return nil, fmt.Errorf("price must have at most 2 decimal places")
	}
	if images == nil {
		images = []string{}
	}

	now := time.Now().UTC()
	return &Item{
		ID:          uuid.New(),
		Name:        name,
		Price:       price,
		Type:        typ,
		Images:      images,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
