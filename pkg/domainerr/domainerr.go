// Package domainerr defines the coarse business-outcome errors that cross the
// service boundary. Storage detail is folded into one of two kinds before it
// reaches this level; see database.ToDomain.
package domainerr

import "fmt"

// Kind is the outcome an operation failed with.
type Kind int

const (
	// KindSave covers every failure to persist state.
	KindSave Kind = iota + 1
	// KindDelete is only produced by explicit domain logic, never by storage translation.
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindSave:
		return "save"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a domain-level failure.
type Error struct {
	Kind   Kind
	Detail string
}

// Save returns a SaveError carrying detail.
func Save(detail string) *Error {
	return &Error{Kind: KindSave, Detail: detail}
}

// Delete returns a DeleteError carrying detail.
func Delete(detail string) *Error {
	return &Error{Kind: KindDelete, Detail: detail}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Detail)
}

// Is reports kind equality so callers can match with errors.Is(err, domainerr.Save("")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
