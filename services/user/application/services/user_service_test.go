package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/logger"
	userdomain "github.com/ghuser/mall/services/user/domain"
	"github.com/ghuser/mall/services/user/domain/models"
)

type fakeRepo struct {
	saved []*models.User
	err   error
}

func (r *fakeRepo) Save(_ context.Context, u *models.User) error {
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, u)
	return nil
}

func TestUserService_Create(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewUserService(repo, logger.New(&config.Config{LogLevel: "error"}))

	u, err := svc.Create(context.Background(), "  Kim@Example.COM ", "Kim", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "kim@example.com" || u.Role != models.UserRoleCustomer || u.Status != models.UserStatusActive {
		t.Fatalf("unexpected user: %+v", u)
	}
	if len(repo.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(repo.saved))
	}
}

func TestUserService_CreateRejects(t *testing.T) {
	tests := []struct {
		name  string
		email string
		uname string
		role  string
		want  error
	}{
		{"bad email", "not-an-email", "Kim", "", userdomain.ErrInvalidEmail},
		{"bad role", "kim@example.com", "Kim", "owner", userdomain.ErrInvalidUserRole},
		{"blank name", "kim@example.com", "   ", "staff", userdomain.ErrInvalidUserName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			svc := NewUserService(repo, logger.New(&config.Config{LogLevel: "error"}))

			_, err := svc.Create(context.Background(), tt.email, tt.uname, tt.role, nil)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(repo.saved) != 0 {
				t.Fatal("invalid user must not be saved")
			}
		})
	}
}

func TestUserService_CreateDuplicateEmail(t *testing.T) {
	repo := &fakeRepo{err: &pgconn.PgError{Code: "23505", Message: "dup key"}}
	svc := NewUserService(repo, logger.New(&config.Config{LogLevel: "error"}))

	_, err := svc.Create(context.Background(), "kim@example.com", "Kim", "", nil)

	got := errhttp.Resolve(err)
	if got.Status() != 400 || got.Type() != "Save error" {
		t.Fatalf("transport: got %d %q", got.Status(), got.Type())
	}
}
