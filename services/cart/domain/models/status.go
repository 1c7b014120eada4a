package models

import "fmt"

// CartStatus is the lifecycle state of a cart. Only Active is ever assigned by
// this package; the other values are accepted when loading persisted carts.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusAbandoned CartStatus = "abandoned"
	CartStatusCheckout  CartStatus = "checkout"
	CartStatusCompleted CartStatus = "completed"
)

// ParseCartStatus validates a persisted status value.
func ParseCartStatus(s string) (CartStatus, error) {
	switch st := CartStatus(s); st {
	case CartStatusActive, CartStatusAbandoned, CartStatusCheckout, CartStatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("unknown cart status %q", s)
	}
}

func (s CartStatus) String() string {
	return string(s)
}
