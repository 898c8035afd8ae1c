package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by request decoding and the product form
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report json names so field errors line up with what the client sent
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Struct validates v against its validate tags
func Struct(v interface{}) error {
	return validate.Struct(v)
}

// Var validates a single value against tag
func Var(value interface{}, tag string) error {
	return validate.Var(value, tag)
}

// Message turns a failed tag into the text shown next to the field
func Message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "numeric":
		return "Must be a number"
	case "number":
		return "Must be a whole number"
	case "uri":
		return "Invalid URI"
	default:
		return "Invalid value"
	}
}
