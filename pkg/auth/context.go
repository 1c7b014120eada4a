package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

type contextKey struct{}

var userIDKey contextKey

// ErrUnauthenticated is returned when the request carries no user identity.
var ErrUnauthenticated = errors.New("authentication required")

// UserIDFromCtx returns the session user attached by LoadSession or RequireAuth.
func UserIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

// OptionalUserID is UserIDFromCtx for endpoints that also serve guests.
func OptionalUserID(ctx context.Context) *uuid.UUID {
	id, err := UserIDFromCtx(ctx)
	if err != nil {
		return nil
	}
	return &id
}

// WithUserID returns a new context carrying userID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
