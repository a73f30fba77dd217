// Package validation wires go-playground/validator into Echo so request DTOs
// are checked declaratively via `validate` struct tags before any handler
// logic runs.
package validation

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// RequestValidator adapts a *validator.Validate to echo.Validator. Install
// it once at startup with e.Validator = validation.New().
type RequestValidator struct {
	validate *validator.Validate
}

// New returns a validator with the library's default tag set, which covers
// everything the DTOs need (required, email, oneof, uuid4, datetime, dive).
func New() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator. Failures become 400 responses carrying
// the validator's field/tag summary.
func (v *RequestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
