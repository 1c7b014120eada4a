package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/mall/services/cart/domain/models"
)

// CartRepository is the persistence interface for the Cart aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Implementations return *database.Error for storage failures, including a
// NotFound kind when a lookup yields no row.
type CartRepository interface {
	// Save inserts or fully replaces the cart and its lines.
	Save(ctx context.Context, cart *models.Cart) error
	GetByID(ctx context.Context, id models.CartID) (*models.Cart, error)

	// GetActiveByOwner returns the most recently updated active cart of ownerID.
	GetActiveByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Cart, error)

	// Delete removes the cart and reports whether a row existed.
	Delete(ctx context.Context, id models.CartID) (bool, error)
}
