package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	pkgvalidator "github.com/ghuser/mall/pkg/validator"
	userdomain "github.com/ghuser/mall/services/user/domain"
)

// Email is a syntactically valid, lower-cased address.
type Email string

// NewEmail normalizes s and checks it with the shared request validator.
func NewEmail(s string) (Email, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if err := pkgvalidator.Var(s, "required,email,max=254"); err != nil {
		return "", fmt.Errorf("%w: %q", userdomain.ErrInvalidEmail, s)
	}
	return Email(s), nil
}

func (e Email) String() string { return string(e) }

type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleAdmin    UserRole = "admin"
	UserRoleStaff    UserRole = "staff"
)

// ParseUserRole maps a wire value to a role. Empty means customer.
func ParseUserRole(s string) (UserRole, error) {
	switch r := UserRole(s); r {
	case "":
		return UserRoleCustomer, nil
	case UserRoleCustomer, UserRoleAdmin, UserRoleStaff:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %q", userdomain.ErrInvalidUserRole, s)
	}
}

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// User is the account aggregate. Credentials are out of scope.
type User struct {
	ID          uuid.UUID
	Email       Email
	Phone       *string
	Role        UserRole
	Status      UserStatus
	Name        string
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUser builds an active user.
func NewUser(email Email, name string, role UserRole, phone *string) (*User, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > 100 {
		return nil, fmt.Errorf("%w: must be 1-100 characters", userdomain.ErrInvalidUserName)
	}

	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Email:     email,
		Phone:     phone,
		Role:      role,
		Status:    UserStatusActive,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// UpdateEmail replaces the address and refreshes UpdatedAt.
func (u *User) UpdateEmail(email Email) {
	u.Email = email
	u.UpdatedAt = time.Now().UTC()
}
