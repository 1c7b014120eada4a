package handlers

import (
	"net/http"

	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	appsvcs "github.com/ghuser/mall/services/cart/application/services"
)

// GetCartHandler handles GET /cart/{cartID}.
type GetCartHandler struct{ base }

func NewGetCartHandler(svc *appsvcs.Services, log logger.Logger) *GetCartHandler {
	return &GetCartHandler{base{svc: svc, log: log}}
}

// Execute returns one cart.
//
//	@Summary	Get cart
//	@Tags		carts
//	@Produce	json
//	@Param		cartID	path		string	true	"Cart ID"
//	@Success	200		{object}	CartResponse
//	@Failure	400		{object}	errhttp.Envelope
//	@Failure	403		{object}	errhttp.Envelope
//	@Failure	404		{object}	errhttp.Envelope
//	@Router		/cart/{cartID} [get]
func (h *GetCartHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := h.cartID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	cart, err := h.svc.Cart.Get(r.Context(), id, auth.OptionalUserID(r.Context()))
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCartResponse(cart))
}

// GetMyCartHandler handles GET /cart/mine.
type GetMyCartHandler struct{ base }

func NewGetMyCartHandler(svc *appsvcs.Services, log logger.Logger) *GetMyCartHandler {
	return &GetMyCartHandler{base{svc: svc, log: log}}
}

// Execute returns the caller's most recently updated active cart.
//
//	@Summary	Get my active cart
//	@Tags		carts
//	@Produce	json
//	@Success	200	{object}	CartResponse
//	@Failure	401	{object}	errhttp.Envelope
//	@Failure	404	{object}	errhttp.Envelope
//	@Router		/cart/mine [get]
func (h *GetMyCartHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, errhttp.Authentication(err.Error()))
		return
	}

	cart, err := h.svc.Cart.GetMine(r.Context(), userID)
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCartResponse(cart))
}
