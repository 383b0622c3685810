package httpserver

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/logging"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  []apierr.FieldError `json:"errors"`
}

func respond(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

// ErrorHandler translates every error escaping a handler into the
// error envelope. Anything that is not a structured API error is a 500.
func ErrorHandler() echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var ae *apierr.Error
		var he *echo.HTTPError
		switch {
		case errors.As(err, &ae):
		case errors.As(err, &he):
			ae = apierr.New(he.Code, fmt.Sprint(he.Message))
		default:
			logging.FromContext(c.Request().Context()).Error("unhandled error", "error", err)
			ae = apierr.Internal("Internal Server Error")
		}

		fields := ae.Fields
		if fields == nil {
			fields = []apierr.FieldError{}
		}
		if jsonErr := c.JSON(ae.Status, errorEnvelope{Success: false, Message: ae.Message, Errors: fields}); jsonErr != nil {
			logging.FromContext(c.Request().Context()).Error("error response failed", "error", jsonErr)
		}
	}
}
