package domain

import "errors"

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrInvalidItemID indicates a malformed item identifier.
	ErrInvalidItemID = errors.New("invalid item id")

	// ErrInvalidItemName indicates the item name violates domain constraints.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrInvalidItemType indicates an unknown catalogue category.
	ErrInvalidItemType = errors.New("invalid item type")

	// ErrInvalidPrice indicates a negative or over-precise price.
	ErrInvalidPrice = errors.New("invalid item price")

	// ErrInvalidItemImages indicates too many images or an unusable image reference.
	ErrInvalidItemImages = errors.New("invalid item images")
)
