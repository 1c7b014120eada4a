package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	pkgvalidator "github.com/ghuser/mall/pkg/validator"
	appsvcs "github.com/ghuser/mall/services/item/application/services"
	"github.com/ghuser/mall/services/item/domain/models"
)

// CreateItemRequest is the request body for POST /item.
type CreateItemRequest struct {
	Name        string          `json:"name"        validate:"required,max=255"                                         example:"Vitamin C 1000"`
	Price       decimal.Decimal `json:"price"       validate:"money"                                                    swaggertype:"string" example:"12.50"`
	Type        string          `json:"type"        validate:"required,oneof=functional_food otc etc medical_device base" example:"functional_food"`
	Images      []string        `json:"images"      validate:"max=20"`
	Description *string         `json:"description" validate:"omitempty,max=2000"                                       example:"One tablet a day after a meal"`
} // @name CreateItemRequest

// ItemResponse is the JSON view of an item.
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"                    example:"123e4567-e89b-12d3-a456-426614174000"`
	Name        string          `json:"name"                  example:"Vitamin C 1000"`
	Price       decimal.Decimal `json:"price"                 swaggertype:"string" example:"12.50"`
	Type        string          `json:"type"                  example:"functional_food"`
	Images      []string        `json:"images"`
	Description *string         `json:"description,omitempty" example:"One tablet a day after a meal"`
	CreatedAt   time.Time       `json:"created_at"            example:"2026-01-15T10:30:00Z"`
	UpdatedAt   time.Time       `json:"updated_at"            example:"2026-01-15T10:30:00Z"`
} // @name Item

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name.String(),
		Price:       item.Price,
		Type:        item.Type.String(),
		Images:      item.Images,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

// PostItemHandler handles POST /item requests.
type PostItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

func NewPostItemHandler(svc *appsvcs.Services, log logger.Logger) *PostItemHandler {
	return &PostItemHandler{svc: svc, log: log}
}

// Execute creates a new catalogue item.
//
//	@Summary		Create item
//	@Description	Adds an item to the catalogue. A storage failure, including a duplicate name for the same type, answers 400 "Save error".
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	ItemResponse
//	@Failure		400		{object}	errhttp.Envelope
//	@Failure		503		{object}	errhttp.Envelope
//	@Router			/item [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Create(r.Context(), appsvcs.CreateItemInput{
		Name:        req.Name,
		Price:       req.Price,
		Type:        req.Type,
		Images:      req.Images,
		Description: req.Description,
	})
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toItemResponse(item))
}
