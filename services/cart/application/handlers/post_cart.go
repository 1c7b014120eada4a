package handlers

import (
	"net/http"

	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	appsvcs "github.com/ghuser/mall/services/cart/application/services"
)

// PostCartHandler handles POST /cart.
type PostCartHandler struct{ base }

func NewPostCartHandler(svc *appsvcs.Services, log logger.Logger) *PostCartHandler {
	return &PostCartHandler{base{svc: svc, log: log}}
}

// Execute creates an empty cart owned by the session user, or a guest cart.
//
//	@Summary		Create cart
//	@Description	Creates an empty active cart that expires in 60 days. Without a session the cart belongs to a guest.
//	@Tags			carts
//	@Produce		json
//	@Success		201	{object}	CartResponse
//	@Failure		400	{object}	errhttp.Envelope
//	@Failure		503	{object}	errhttp.Envelope
//	@Router			/cart [post]
func (h *PostCartHandler) Execute(w http.ResponseWriter, r *http.Request) {
	cart, err := h.svc.Cart.Create(r.Context(), auth.OptionalUserID(r.Context()))
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toCartResponse(cart))
}
