package handlers

import (
	"net/http"

	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	appsvcs "github.com/ghuser/mall/services/cart/application/services"
)

// DeleteCartItemHandler handles DELETE /cart/{cartID}/items/{itemID}.
type DeleteCartItemHandler struct{ base }

func NewDeleteCartItemHandler(svc *appsvcs.Services, log logger.Logger) *DeleteCartItemHandler {
	return &DeleteCartItemHandler{base{svc: svc, log: log}}
}

// Execute removes one line.
//
//	@Summary	Remove item from cart
//	@Tags		carts
//	@Produce	json
//	@Param		cartID	path		string	true	"Cart ID"
//	@Param		itemID	path		string	true	"Item ID"
//	@Success	200		{object}	RemoveItemResponse
//	@Failure	400		{object}	errhttp.Envelope
//	@Failure	403		{object}	errhttp.Envelope
//	@Failure	404		{object}	errhttp.Envelope
//	@Router		/cart/{cartID}/items/{itemID} [delete]
func (h *DeleteCartItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
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

	removed, cart, err := h.svc.Cart.RemoveItem(r.Context(), id, auth.OptionalUserID(r.Context()), itemID)
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, RemoveItemResponse{Removed: removed, Cart: toCartResponse(cart)})
}

// ClearCartHandler handles DELETE /cart/{cartID}/items.
type ClearCartHandler struct{ base }

func NewClearCartHandler(svc *appsvcs.Services, log logger.Logger) *ClearCartHandler {
	return &ClearCartHandler{base{svc: svc, log: log}}
}

// Execute removes every line.
//
//	@Summary	Clear cart
//	@Tags		carts
//	@Produce	json
//	@Param		cartID	path		string	true	"Cart ID"
//	@Success	200		{object}	CartResponse
//	@Failure	403		{object}	errhttp.Envelope
//	@Failure	404		{object}	errhttp.Envelope
//	@Router		/cart/{cartID}/items [delete]
func (h *ClearCartHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := h.cartID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	cart, err := h.svc.Cart.Clear(r.Context(), id, auth.OptionalUserID(r.Context()))
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCartResponse(cart))
}
