package models

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	cartdomain "github.com/ghuser/mall/services/cart/domain"
)

// CartID is the opaque identifier of a Cart. New carts get a random UUIDv4 string.
type CartID string

// NewCartID returns a fresh random CartID.
func NewCartID() CartID {
	return CartID(uuid.NewString())
}

// ParseCartID accepts any non-blank text as a CartID.
func ParseCartID(s string) (CartID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: must not be empty", cartdomain.ErrInvalidCartID)
	}
	return CartID(s), nil
}

func (id CartID) String() string {
	return string(id)
}

// ItemID references a catalogue item from inside a cart.
type ItemID string

// ParseItemID accepts any non-blank text as an ItemID.
func ParseItemID(s string) (ItemID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: must not be empty", cartdomain.ErrInvalidItemID)
	}
	return ItemID(s), nil
}

func (id ItemID) String() string {
	return string(id)
}
