package domain

import "errors"

// Sentinel errors for the cart domain. Use errors.Is() to check these.
var (
	// ErrInvalidCartID indicates an empty or malformed cart identifier.
	ErrInvalidCartID = errors.New("invalid cart id")

	// ErrInvalidItemID indicates an empty item reference.
	ErrInvalidItemID = errors.New("invalid item id")

	// ErrInvalidQuantity indicates a quantity outside the accepted range for the operation.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrCartAccessDenied indicates the caller does not own the cart.
	ErrCartAccessDenied = errors.New("cart belongs to another user")

	// ErrCartLocked indicates the per-cart lock could not be acquired in time.
	ErrCartLocked = errors.New("cart is locked by another request")
)
