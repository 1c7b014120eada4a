package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/mall/pkg/app"
	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/services/cart/application/handlers"
	appsvcs "github.com/ghuser/mall/services/cart/application/services"
)

// CartRoutes registers cart endpoints on r. Sessions are optional except on
// /cart/mine.
func CartRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	Mount(r, svcs, a)
}

// Mount registers the handlers of svcs. It is split from CartRoutes so tests
// can supply services built on fakes.
func Mount(r chi.Router, svcs *appsvcs.Services, a *app.Application) {
	r.Route("/cart", func(r chi.Router) {
		if a.SessionStore != nil {
			r.Use(auth.LoadSession(a.SessionStore, a.Logger))
		}

		r.Post("/", handlers.NewPostCartHandler(svcs, a.Logger).Execute)

		r.Group(func(r chi.Router) {
			if a.SessionStore != nil {
				r.Use(auth.RequireAuth(a.SessionStore, a.Logger))
			}
			r.Get("/mine", handlers.NewGetMyCartHandler(svcs, a.Logger).Execute)
		})

		r.Route("/{cartID}", func(r chi.Router) {
			r.Get("/", handlers.NewGetCartHandler(svcs, a.Logger).Execute)
			r.Delete("/", handlers.NewDeleteCartHandler(svcs, a.Logger).Execute)

			r.Post("/items", handlers.NewPostCartItemHandler(svcs, a.Logger).Execute)
			r.Delete("/items", handlers.NewClearCartHandler(svcs, a.Logger).Execute)
			r.Put("/items/{itemID}", handlers.NewPutCartItemHandler(svcs, a.Logger).Execute)
			r.Delete("/items/{itemID}", handlers.NewDeleteCartItemHandler(svcs, a.Logger).Execute)
		})
	})
}
