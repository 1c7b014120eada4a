package handlers

import (
	"net/http"

	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	pkgvalidator "github.com/ghuser/mall/pkg/validator"
	appsvcs "github.com/ghuser/mall/services/cart/application/services"
)

// UpdateQuantityRequest is the body of PUT /cart/{cartID}/items/{itemID}.
// Zero removes the line.
type UpdateQuantityRequest struct {
	Quantity *uint32 `json:"quantity" validate:"required" example:"3"`
} // @name UpdateQuantityRequest

// PutCartItemHandler handles PUT /cart/{cartID}/items/{itemID}.
type PutCartItemHandler struct{ base }

func NewPutCartItemHandler(svc *appsvcs.Services, log logger.Logger) *PutCartItemHandler {
	return &PutCartItemHandler{base{svc: svc, log: log}}
}

// Execute replaces the quantity of an existing line.
//
//	@Summary		Set item quantity
//	@Description	Sets the quantity of a line already in the cart; 0 removes it. applied is false when the item is not in the cart.
//	@Tags			carts
//	@Accept			json
//	@Produce		json
//	@Param			cartID	path		string					true	"Cart ID"
//	@Param			itemID	path		string					true	"Item ID"
//	@Param			request	body		UpdateQuantityRequest	true	"New quantity"
//	@Success		200		{object}	UpdateQuantityResponse
//	@Failure		400		{object}	errhttp.Envelope
//	@Failure		403		{object}	errhttp.Envelope
//	@Failure		404		{object}	errhttp.Envelope
//	@Failure		502		{object}	errhttp.Envelope
//	@Router			/cart/{cartID}/items/{itemID} [put]
func (h *PutCartItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := h.cartID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	itemID, err := h.itemID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[UpdateQuantityRequest](w, r)
	if !ok {
		return
	}

	applied, cart, err := h.svc.Cart.UpdateQuantity(r.Context(), id, auth.OptionalUserID(r.Context()), itemID, *req.Quantity)
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, UpdateQuantityResponse{Applied: applied, Cart: toCartResponse(cart)})
}
