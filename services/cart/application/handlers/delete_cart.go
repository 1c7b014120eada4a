package handlers

import (
	"net/http"

	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/logger"
	appsvcs "github.com/ghuser/mall/services/cart/application/services"
)

// DeleteCartHandler handles DELETE /cart/{cartID}.
type DeleteCartHandler struct{ base }

func NewDeleteCartHandler(svc *appsvcs.Services, log logger.Logger) *DeleteCartHandler {
	return &DeleteCartHandler{base{svc: svc, log: log}}
}

// Execute deletes the cart.
//
//	@Summary		Delete cart
//	@Description	Deleting a cart that no longer exists answers 400 "Delete error".
//	@Tags			carts
//	@Param			cartID	path	string	true	"Cart ID"
//	@Success		204
//	@Failure		400	{object}	errhttp.Envelope
//	@Failure		403	{object}	errhttp.Envelope
//	@Router			/cart/{cartID} [delete]
func (h *DeleteCartHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := h.cartID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	if err := h.svc.Cart.Delete(r.Context(), id, auth.OptionalUserID(r.Context())); err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
