// Package validator decodes and checks request DTOs with go-playground
// validator tags. Field names in error maps are the JSON names.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ghuser/mall/pkg/errhttp"
	"github.com/ghuser/mall/pkg/httpx"
)

var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)
	// Decimals are checked through their string form.
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		if d, ok := f.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	if err := v.RegisterValidation("money", isMoney); err != nil {
		panic(err)
	}
	return v
})

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}

// isMoney accepts non-negative amounts with at most two fractional digits.
func isMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Equal(d.Round(2))
}

// Validate checks s against its validate tags.
func Validate(s any) error {
	return instance().Struct(s)
}

// Var checks a single value, e.g. Var(email, "required,email").
func Var(v any, tag string) error {
	return instance().Var(v, tag)
}

// FormatValidationErrors maps each failing JSON field to a readable message.
// Errors that are not validator.ValidationErrors give an empty map.
func FormatValidationErrors(err error) map[string]string {
	out := map[string]string{}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

var fixedMessages = map[string]string{
	"required": "This field is required",
	"uuid":     "Must be a valid UUID",
	"uuid4":    "Must be a valid UUID",
	"email":    "Must be a valid email address",
	"url":      "Must be a valid URL",
	"money":    "Must be a non-negative amount with at most 2 decimal places",
}

func message(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	sized := fe.Kind() == reflect.String || fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map
	switch fe.Tag() {
	case "min":
		if sized {
			return "Minimum length is " + fe.Param()
		}
		return "Must be at least " + fe.Param()
	case "max":
		if sized {
			return "Maximum length is " + fe.Param()
		}
		return "Must be at most " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "lte":
		return "Must be less than or equal to " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	}
	return fmt.Sprintf("Validation failed on '%s'", fe.Tag())
}

// ValidateRequest decodes the JSON body into a T and validates it. On failure
// it writes the error response itself and returns false.
func ValidateRequest[T any](w http.ResponseWriter, r *http.Request) (*T, bool) {
	req := new(T)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeDecodeError(w, err)
		return nil, false
	}
	if err := Validate(req); err != nil {
		errhttp.WriteError(w, errhttp.ValidationFields("Validation failed", FormatValidationErrors(err)))
		return nil, false
	}
	return req, true
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Payload too large",
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.Is(err, io.EOF):
		errhttp.WriteError(w, errhttp.Validation("Request body is empty"))
	default:
		errhttp.WriteError(w, errhttp.Validation("Invalid JSON"))
	}
}
