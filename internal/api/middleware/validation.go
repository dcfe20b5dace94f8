package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"coachlens/internal/api/errors"
)

// Validator adds domain rules a request type checks after its binding tags
// pass, such as label/evaluation count agreement.
type Validator interface {
	Validate() error
}

// tagMessage turns a binding-tag failure into a client-facing reason.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "is too short"
	case "max":
		return "is too long"
	case "oneof":
		return "must be one of the allowed values"
	default:
		return "is invalid"
	}
}

// ValidateRequest binds the JSON body and runs binding-tag plus domain
// validation.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		fields := make(map[string]string)
		if bindErrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range bindErrs {
				fields[strings.ToLower(fe.Field())] = tagMessage(fe)
			}
		} else {
			fields["request"] = "invalid JSON format"
		}
		return errors.NewValidationError("Validation failed", fields)
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuery binds query parameters and runs domain validation. Query
// shape failures are bad requests, not validation errors: the request could
// not even be read.
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return errors.NewBadRequestError("Invalid query parameters")
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
