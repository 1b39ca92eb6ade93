// Package middleware holds the echo-level plumbing shared by every route.
package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wanderplan/trip-service/internal/dto"
)

// ErrorHandler renders every error as {"message": ...} JSON, so the domain
// sentinels mapped in the handler and echo's own HTTP errors share one wire
// shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
