package handler

import (
	"github.com/go-playground/validator/v10"
)

// Validator adapts go-playground/validator to Echo's Validator
// interface.  A single instance is shared across handlers; the
// underlying validate struct caches parsed tags and is safe for
// concurrent use.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the shared request validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}
