package service

import (
	"errors"
	"strings"

	"pocket-pos/internal/validation"

	"github.com/go-playground/validator/v10"
)

var (
	ErrBasketNotFound    = errors.New("basket not found")
	ErrEmptyBasket       = errors.New("basket is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSalePending       = errors.New("basket has a sale waiting to be recorded")
)

// FieldError describes one rejected form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when user input is rejected before storage is touched
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, FieldError{
			Field:   e.Field(),
			Message: validation.Message(e),
		})
	}
	return &ValidationError{Fields: fields}
}
