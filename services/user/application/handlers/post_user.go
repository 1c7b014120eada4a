package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/mall/pkg/auth"
	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	pkgvalidator "github.com/ghuser/mall/pkg/validator"
	appsvcs "github.com/ghuser/mall/services/user/application/services"
	"github.com/ghuser/mall/services/user/domain/models"
)

// CreateUserRequest is the request body for POST /user.
type CreateUserRequest struct {
	Email string  `json:"email" validate:"required,email,max=254"                  example:"kim@example.com"`
	Name  string  `json:"name"  validate:"required,max=100"                        example:"Kim Minji"`
	Role  string  `json:"role"  validate:"omitempty,oneof=customer admin staff"     example:"customer"`
	Phone *string `json:"phone" validate:"omitempty,max=32"                        example:"+82-10-1234-5678"`
} // @name CreateUserRequest

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"              example:"123e4567-e89b-12d3-a456-426614174000"`
	Email     string    `json:"email"           example:"kim@example.com"`
	Name      string    `json:"name"            example:"Kim Minji"`
	Phone     *string   `json:"phone,omitempty" example:"+82-10-1234-5678"`
	Role      string    `json:"role"            example:"customer"`
	Status    string    `json:"status"          example:"active"`
	CreatedAt time.Time `json:"created_at"      example:"2026-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updated_at"      example:"2026-01-15T10:30:00Z"`
} // @name User

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email.String(),
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      string(u.Role),
		Status:    string(u.Status),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PostUserHandler handles POST /user requests.
type PostUserHandler struct {
	svc   *appsvcs.Services
	store sessions.Store
	log   logger.Logger
}

// NewPostUserHandler builds the handler. With a nil store no session is started.
func NewPostUserHandler(svc *appsvcs.Services, store sessions.Store, log logger.Logger) *PostUserHandler {
	return &PostUserHandler{svc: svc, store: store, log: log}
}

// Execute registers a user and signs the caller in as that user.
//
//	@Summary		Register user
//	@Description	Creates an active account and binds it to the session cookie.
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateUserRequest	true	"User registration request"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	errhttp.Envelope
//	@Router			/user [post]
func (h *PostUserHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateUserRequest](w, r)
	if !ok {
		return
	}

	user, err := h.svc.User.Create(r.Context(), req.Email, req.Name, req.Role, req.Phone)
	if err != nil {
		errhttp.WriteErrorLogged(w, r, h.log, err)
		return
	}

	if h.store != nil {
		if err := auth.StartSession(w, r, h.store, user.ID); err != nil {
			h.log.ErrorContext(r.Context(), "start session", "user_id", user.ID, "error", err)
			errhttp.WriteError(w, errhttp.Other("could not start session"))
			return
		}
	}

	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}
