package services

import (
	"context"
	"fmt"

	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/logger"
	"github.com/ghuser/mall/services/user/domain/models"
	"github.com/ghuser/mall/services/user/domain/repositories"
)

// UserService registers accounts.
type UserService struct {
	repo repositories.UserRepository
	log  logger.Logger
}

func NewUserService(repo repositories.UserRepository, log logger.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

// Create validates and stores a new active user. An address that is already
// registered comes back as a domain save error.
func (s *UserService) Create(ctx context.Context, email, name, role string, phone *string) (*models.User, error) {
	addr, err := models.NewEmail(email)
	if err != nil {
		return nil, err
	}
	r, err := models.ParseUserRole(role)
	if err != nil {
		return nil, err
	}
	user, err := models.NewUser(addr, name, r, phone)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", database.ToDomain(database.Classify(err)))
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}
