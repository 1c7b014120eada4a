package repositories

import (
	"context"

	"github.com/ghuser/mall/services/user/domain/models"
)

// UserRepository is the persistence interface for the User aggregate.
type UserRepository interface {
	Save(ctx context.Context, user *models.User) error
}
