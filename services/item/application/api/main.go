package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/services/item/application/handlers"
	appsvcs "github.com/ghuser/mall/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router.
func ItemRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a)
}

// Mount registers the handlers of svcs.
func Mount(r chi.Router, svcs *appsvcs.Services, a *app.Application) {
	r.Route("/item", func(r chi.Router) {
		r.Post("/", handlers.NewPostItemHandler(svcs, a.Logger).Execute)
		r.Get("/{itemID}", handlers.NewGetItemHandler(svcs, a.Logger).Execute)
	})
}
