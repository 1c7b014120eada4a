package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/mall/pkg/logger"
	appsvcs "github.com/ghuser/mall/services/cart/application/services"
	"github.com/ghuser/mall/services/cart/domain/models"
)

// base carries what every cart handler needs.
type base struct {
	svc *appsvcs.Services
	log logger.Logger
}

func (b base) cartID(r *http.Request) (models.CartID, error) {
	return models.ParseCartID(chi.URLParam(r, "cartID"))
}

func (b base) itemID(r *http.Request) (models.ItemID, error) {
	return models.ParseItemID(chi.URLParam(r, "itemID"))
}
