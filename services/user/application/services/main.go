package services

import (
	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/services/user/infrastructure/persistence/postgres"
)

// Services is the application-layer container of the user service.
type Services struct {
	User *UserService
}

// New wires the user services from the shared Application.
func New(a *app.Application) *Services {
	return &Services{
		User: NewUserService(postgres.NewUserRepository(a.Db), a.Logger),
	}
}
