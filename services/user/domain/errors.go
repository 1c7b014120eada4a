package domain

import "errors"

// Sentinel errors for the user domain.
var (
	ErrInvalidEmail    = errors.New("invalid email")
	ErrInvalidUserName = errors.New("invalid user name")
	ErrInvalidUserRole = errors.New("invalid user role")
)
