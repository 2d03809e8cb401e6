package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"youtube-scout/internal/api/errors"
)

// Validator is implemented by request DTOs with domain rules beyond struct tags.
type Validator interface {
	Validate() error
}

// ValidateRequest binds the JSON body and translates binding failures into a
// structured validation error with per-field messages.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		validationErrors := make(map[string]string)

		if validationErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrs {
				field := strings.ToLower(fieldError.Field())

				switch fieldError.Tag() {
				case "required":
					validationErrors[field] = "is required"
				case "min":
					validationErrors[field] = "is too small"
				case "max":
					validationErrors[field] = "is too large"
				case "oneof":
					validationErrors[field] = "must be one of the allowed values"
				default:
					validationErrors[field] = "is invalid"
				}
			}
		} else {
			validationErrors["request"] = "invalid JSON format"
		}

		return errors.NewValidationError("validation failed", validationErrors)
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	return nil
}
