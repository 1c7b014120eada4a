package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	appsvcs "github.com/ghuser/mall/services/item/application/services"
	itemdomain "github.com/ghuser/mall/services/item/domain"
)

// GetItemHandler handles GET /item/{itemID}.
type GetItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewGetItemHandler(svc *appsvcs.Services, log logger.Logger) *GetItemHandler {
	return &GetItemHandler{svc: svc, log: log}
}

// Execute returns one item.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		itemID	path		string	true	"Item ID"	format(uuid)
//	@Success	200		{object}	ItemResponse
//	@Failure	400		{object}	errhttp.Envelope
//	@Failure	404		{object}	errhttp.Envelope
//	@Router		/item/{itemID} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		errhttp.WriteError(w, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemID, err))
		return
	}

	item, err := h.svc.Item.GetByID(r.Context(), id)
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
