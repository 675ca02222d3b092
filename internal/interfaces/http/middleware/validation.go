package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/erp/barcode/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// SetupValidator makes validation errors report JSON field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterJSONTagNames(v)
	}
}

// RegisterJSONTagNames reports struct fields by their JSON tag name
func RegisterJSONTagNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidationErrorResponse converts the first validator failure into a flat
// field error. It reports false for errors that are not validation errors.
func ValidationErrorResponse(err error, requestID string) (dto.Response, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return nil, false
	}

	e := validationErrors[0]
	field := e.Field()
	if field == "" {
		field = dto.ErrorField
	}
	code := dto.ErrCodeValidation
	if e.Tag() == "max" || e.Tag() == "min" {
		code = dto.ErrCodeValidationLength
	}
	return dto.NewErrorResponse(field, code, validationMessage(e), requestID), true
}

// validationMessage returns a human-readable validation message
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "max":
		if e.Kind() == reflect.String {
			return "Ensure this field has no more than " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			return "Ensure this field has at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	default:
		return "Invalid value"
	}
}
