package httpserver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skvortsov/todoapp/internal/apierr"
)

// RequestValidator plugs validator/v10 into Echo so every bound
// request struct is checked against its tags; failures become a 400
// with the per-field messages preserved.
type RequestValidator struct {
	v *validator.Validate
}

func NewValidator() *RequestValidator {
	return &RequestValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (rv *RequestValidator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apierr.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apierr.FieldError{
				Field:   fieldName(fe),
				Message: fieldMessage(fe),
			})
		}
		return apierr.BadRequestFields("invalid request body", fields)
	}
	return apierr.Internal("Internal Server Error")
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	name := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "invalid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
