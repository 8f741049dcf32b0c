package http

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	apperrors "github.com/wekeepgrowing/closerlink/pkg/errors"
)

// RequestValidator plugs validator/v10 into echo's c.Validate.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	validate := validator.New()
	// report fields by their JSON names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &RequestValidator{validate: validate}
}

// Validate returns an INVALID_ARGUMENT AppError naming the failing fields.
func (v *RequestValidator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !apperrors.As(err, &ve) {
		return apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid request", err)
	}

	problems := make([]string, 0, len(ve))
	for _, fe := range ve {
		problems = append(problems, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return apperrors.NewAppError(apperrors.ErrInvalidArgument, strings.Join(problems, "; "), err)
}

// bindAndValidate binds the request body into req and validates it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewAppError(apperrors.ErrInvalidArgument, "invalid request body", err)
	}
	return c.Validate(req)
}
