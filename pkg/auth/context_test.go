package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestWithUserID_UserIDFromCtx(t *testing.T) {
	userID := uuid.New()
	ctx := WithUserID(context.Background(), userID)

	got, err := UserIDFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Fatalf("expected %v, got %v", userID, got)
	}
}

func TestUserIDFromCtx_Missing(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"empty context", context.Background()},
		{"nil uuid", WithUserID(context.Background(), uuid.Nil)},
		{"wrong type under a string key", context.WithValue(context.Background(), "user_id", uuid.New())}, //nolint:staticcheck
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := UserIDFromCtx(tt.ctx); !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestOptionalUserID(t *testing.T) {
	if OptionalUserID(context.Background()) != nil {
		t.Fatal("guest context must yield nil")
	}
	id := uuid.New()
	got := OptionalUserID(WithUserID(context.Background(), id))
	if got == nil || *got != id {
		t.Fatalf("expected %v, got %v", id, got)
	}
}
