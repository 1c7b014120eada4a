package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	userdomain "github.com/ghuser/mall/services/user/domain"
)

func TestNewEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    Email
		wantErr bool
	}{
		{"test@example.com", "test@example.com", false},
		{"  Mixed@Example.COM ", "mixed@example.com", false},
		{"", "", true},
		{"not-an-email", "", true},
		{"a@", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NewEmail(tt.in)
			if tt.wantErr {
				if !errors.Is(err, userdomain.ErrInvalidEmail) {
					t.Fatalf("expected ErrInvalidEmail, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestParseUserRole(t *testing.T) {
	tests := []struct {
		in      string
		want    UserRole
		wantErr bool
	}{
		{"", UserRoleCustomer, false},
		{"customer", UserRoleCustomer, false},
		{"admin", UserRoleAdmin, false},
		{"staff", UserRoleStaff, false},
		{"root", "", true},
	}
	for _, tt := range tests {
		got, err := ParseUserRole(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseUserRole(%q) = %q, %v", tt.in, got, err)
		}
		if tt.wantErr && !errors.Is(err, userdomain.ErrInvalidUserRole) {
			t.Fatalf("expected ErrInvalidUserRole, got %v", err)
		}
	}
}

func TestNewUser(t *testing.T) {
	email := Email("test@example.com")

	u, err := NewUser(email, "  Hong Gildong ", UserRoleCustomer, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Name != "Hong Gildong" {
		t.Fatalf("Name: got %q", u.Name)
	}
	if u.Status != UserStatusActive {
		t.Fatalf("Status: got %q", u.Status)
	}
	if !u.CreatedAt.Equal(u.UpdatedAt) {
		t.Fatal("timestamps must match on creation")
	}

	if _, err := NewUser(email, "   ", UserRoleCustomer, nil); !errors.Is(err, userdomain.ErrInvalidUserName) {
		t.Fatalf("expected ErrInvalidUserName, got %v", err)
	}
	if _, err := NewUser(email, strings.Repeat("n", 101), UserRoleCustomer, nil); !errors.Is(err, userdomain.ErrInvalidUserName) {
		t.Fatalf("expected ErrInvalidUserName for long name, got %v", err)
	}
}

func TestUser_UpdateEmail(t *testing.T) {
	u, err := NewUser("old@example.com", "Kim", UserRoleStaff, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u.UpdatedAt = u.UpdatedAt.Add(-time.Hour)
	before := u.UpdatedAt

	u.UpdateEmail("new@example.com")
	if u.Email != "new@example.com" {
		t.Fatalf("Email: got %q", u.Email)
	}
	if !u.UpdatedAt.After(before) {
		t.Fatal("UpdatedAt must advance")
	}
}
