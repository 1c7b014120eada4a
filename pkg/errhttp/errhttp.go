// Package errhttp is the transport level of the error pipeline. It turns any
// error into an HTTP status and a {"error":{"type","message"}} body.
// Add a case to resolveSentinel for each new domain sentinel error.
package errhttp

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ghuser/mall/pkg/database"
	"github.com/ghuser/mall/pkg/domainerr"
	"github.com/ghuser/mall/pkg/httpx"
	"github.com/ghuser/mall/pkg/logger"
	"github.com/ghuser/mall/pkg/telemetry"
	cartdomain "github.com/ghuser/mall/services/cart/domain"
	itemdomain "github.com/ghuser/mall/services/item/domain"
	userdomain "github.com/ghuser/mall/services/user/domain"
)

// Kind is the transport-level failure category.
type Kind int

const (
	KindDomain Kind = iota + 1
	KindDatabase
	KindExternalService
	KindValidation
	KindAuthentication
	KindAuthorization
	KindOther
)

// Error is a transport-level failure. Exactly one of Domain, Database or
// Message carries the payload, depending on Kind.
type Error struct {
	Kind     Kind
	Domain   *domainerr.Error
	Database *database.Error
	Message  string
	Fields   map[string]string // per-field validation messages, optional
}

// Body is the inner object of the error envelope.
type Body struct {
	Type    string            `json:"type"    example:"Duplicate data"`
	Message string            `json:"message" example:"dup key"`
	Fields  map[string]string `json:"fields,omitempty"`
} // @name ErrorBody

// Envelope is the JSON shape of every error response.
type Envelope struct {
	Error Body `json:"error"`
} // @name ErrorResponse

func FromDomain(err *domainerr.Error) *Error {
	return &Error{Kind: KindDomain, Domain: err}
}

func FromDatabase(err *database.Error) *Error {
	return &Error{Kind: KindDatabase, Database: err}
}

func ExternalService(msg string) *Error {
	return &Error{Kind: KindExternalService, Message: msg}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationFields is a Validation error that also reports per-field problems.
func ValidationFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func Other(msg string) *Error {
	return &Error{Kind: KindOther, Message: msg}
}

// Status returns the HTTP status code for e.
func (e *Error) Status() int {
	switch e.Kind {
	case KindDomain:
		return http.StatusBadRequest
	case KindDatabase:
		switch e.Database.Kind {
		case database.KindNotFound:
			return http.StatusNotFound
		case database.KindDuplicate:
			return http.StatusConflict
		case database.KindQuery:
			return http.StatusBadRequest
		case database.KindConnection:
			return http.StatusServiceUnavailable
		default:
			return http.StatusInternalServerError
		}
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Type returns the stable type label clients match on.
func (e *Error) Type() string {
	switch e.Kind {
	case KindDomain:
		if e.Domain.Kind == domainerr.KindDelete {
			return "Delete error"
		}
		return "Save error"
	case KindDatabase:
		switch e.Database.Kind {
		case database.KindNotFound:
			return "Not found"
		case database.KindDuplicate:
			return "Duplicate data"
		case database.KindQuery:
			return "Query error"
		case database.KindConnection:
			return "Database connection error"
		default:
			return "Database error"
		}
	case KindValidation:
		return "Validation error"
	case KindAuthentication:
		return "Authentication error"
	case KindAuthorization:
		return "Authorization error"
	case KindExternalService:
		return "External service error"
	default:
		return "Internal server error"
	}
}

func (e *Error) message() string {
	switch e.Kind {
	case KindDomain:
		return e.Domain.Detail
	case KindDatabase:
		return e.Database.Message
	default:
		return e.Message
	}
}

// Body returns the response envelope for e.
func (e *Error) Body() Envelope {
	return Envelope{Error: Body{Type: e.Type(), Message: e.message(), Fields: e.Fields}}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Type(), e.message())
}

func (e *Error) Unwrap() error {
	switch {
	case e.Domain != nil:
		return e.Domain
	case e.Database != nil:
		return e.Database
	default:
		return nil
	}
}

// Resolve maps any error to a transport error. Pipeline errors are found with
// errors.As; known domain sentinels map to their transport kind; anything
// else becomes Other. A nil err yields nil.
func Resolve(err error) *Error {
	if err == nil {
		return nil
	}

	var te *Error
	if errors.As(err, &te) {
		return te
	}

	var de *domainerr.Error
	if errors.As(err, &de) {
		return FromDomain(de)
	}

	var se *database.Error
	if errors.As(err, &se) {
		return FromDatabase(se)
	}

	if e := resolveSentinel(err); e != nil {
		return e
	}

	return Other(err.Error())
}

func resolveSentinel(err error) *Error {
	switch {
	case errors.Is(err, cartdomain.ErrInvalidCartID),
		errors.Is(err, cartdomain.ErrInvalidItemID),
		errors.Is(err, cartdomain.ErrInvalidQuantity),
		errors.Is(err, itemdomain.ErrInvalidItemID),
		errors.Is(err, itemdomain.ErrInvalidItemName),
		errors.Is(err, itemdomain.ErrInvalidItemType),
		errors.Is(err, itemdomain.ErrInvalidPrice),
		errors.Is(err, itemdomain.ErrInvalidItemImages),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidUserName),
		errors.Is(err, userdomain.ErrInvalidUserRole):
		return Validation(err.Error())
	case errors.Is(err, cartdomain.ErrCartAccessDenied):
		return Authorization(err.Error())
	case errors.Is(err, cartdomain.ErrCartLocked):
		return ExternalService(err.Error())
	default:
		return nil
	}
}

// WriteError resolves err and writes its status and envelope.
func WriteError(w http.ResponseWriter, err error) {
	e := resolveOrInternal(err)
	httpx.JSON(w, e.Status(), e.Body())
}

func resolveOrInternal(err error) *Error {
	if e := Resolve(err); e != nil {
		return e
	}
	return Other(http.StatusText(http.StatusInternalServerError))
}

// WriteErrorLogged is WriteError that also logs server-side (5xx) failures
// and reports them to Sentry.
func WriteErrorLogged(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	e := resolveOrInternal(err)
	if e.Status() >= http.StatusInternalServerError {
		telemetry.ReportError(r.Context(), err)
		if log != nil {
			log.ErrorContext(r.Context(), "request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", e.Status(),
				"error", err,
			)
		}
	}
	httpx.JSON(w, e.Status(), e.Body())
}
