// Package handler exposes the HTTP endpoints.  Handlers bind and check the
// request shape, call one service operation and return domain errors
// unchanged; ErrorHandler turns those into status codes.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/middleware"
	"github.com/iliyamo/tour-reservation/internal/model"
)

const requestTimeout = 5 * time.Second

// requestContext bounds the database work done for one request.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// getUserID extracts the authenticated user id placed by JWTAuth.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return id, nil
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s", model.ErrValidation, name)
	}
	return id, nil
}

// bind decodes the body and reports malformed JSON as a validation error.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return fmt.Errorf("%w: invalid body", model.ErrValidation)
	}
	return nil
}
