package handlers

import (
	"net/http"

	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	pkgvalidator "github.com/ghuser/mall/pkg/validator"
	appsvcs "github.com/ghuser/mall/services/cart/application/services"
	"github.com/ghuser/mall/services/cart/domain/models"
)

// AddItemRequest is the body of POST /cart/{cartID}/items.
type AddItemRequest struct {
	ItemID   string `json:"item_id"  validate:"required,max=64" example:"sku-1001"`
	Quantity uint32 `json:"quantity" validate:"required,gte=1"  example:"2"`
} // @name AddItemRequest

// PostCartItemHandler handles POST /cart/{cartID}/items.
type PostCartItemHandler struct{ base }

func NewPostCartItemHandler(svc *appsvcs.Services, log logger.Logger) *PostCartItemHandler {
	return &PostCartItemHandler{base{svc: svc, log: log}}
}

// Execute adds quantity of an item, merging with an existing line.
//
//	@Summary		Add item to cart
//	@Description	Adds the quantity to the existing line for the item or creates the line. Quantities saturate at 4294967295.
//	@Tags			carts
//	@Accept			json
//	@Produce		json
//	@Param			cartID	path		string			true	"Cart ID"
//	@Param			request	body		AddItemRequest	true	"Item and quantity"
//	@Success		200		{object}	CartResponse
//	@Failure		400		{object}	errhttp.Envelope
//	@Failure		403		{object}	errhttp.Envelope
//	@Failure		404		{object}	errhttp.Envelope
//	@Failure		502		{object}	errhttp.Envelope
//	@Router			/cart/{cartID}/items [post]
func (h *PostCartItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, err := h.cartID(r)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[AddItemRequest](w, r)
	if !ok {
		return
	}
	itemID, err := models.ParseItemID(req.ItemID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	cart, err := h.svc.Cart.AddItem(r.Context(), id, auth.OptionalUserID(r.Context()), itemID, req.Quantity)
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toCartResponse(cart))
}
