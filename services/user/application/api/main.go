package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/services/user/application/handlers"
	appsvcs "github.com/ghuser/mall/services/user/application/services"
)

// UserRoutes registers user endpoints on the provided chi router.
func UserRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a)
}

func Mount(r chi.Router, svcs *appsvcs.Services, a *app.Application) {
	r.Post("/user", handlers.NewPostUserHandler(svcs, a.SessionStore, a.Logger).Execute)
}
