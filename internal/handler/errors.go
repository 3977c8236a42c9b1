package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/tour-reservation/internal/model"
)

type errorKind struct {
	target  error
	status  int
	code    string
	message string // empty: use err.Error()
}

// Order matters: more specific kinds come before the kinds they wrap.
var errorKinds = []errorKind{
	{model.ErrValidation, http.StatusBadRequest, "validation_failed", ""},
	{model.ErrInvalidTravelers, http.StatusBadRequest, "invalid_amount", "invalid traveler counts"},
	{model.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "invalid amount"},
	{model.ErrSelfTransfer, http.StatusBadRequest, "self_transfer", "cannot transfer to own wallet"},
	{model.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid credentials"},
	{model.ErrNotFound, http.StatusNotFound, "not_found", ""},
	{model.ErrEventUnavailable, http.StatusConflict, "event_unavailable", "event unavailable"},
	{model.ErrAlreadyCancelled, http.StatusConflict, "already_cancelled", "reservation already cancelled"},
	{model.ErrCancellationWindowClosed, http.StatusConflict, "cancellation_window_closed", "cancellation window closed"},
	{model.ErrCapacityExceeded, http.StatusConflict, "capacity_exceeded", "event capacity exceeded"},
	{model.ErrUsernameTaken, http.StatusConflict, "username_taken", "username already exists"},
	{model.ErrConflict, http.StatusConflict, "conflict", "value already in use"},
	{model.ErrInsufficientFunds, http.StatusUnprocessableEntity, "insufficient_funds", "insufficient funds"},
	{model.ErrTransient, http.StatusServiceUnavailable, "try_again", "temporarily unavailable, retry the request"},
}

// Classify maps an error returned by a handler to its HTTP status, machine
// code and client message.  Unknown errors become 500 without detail.
func Classify(err error) (status int, code, message string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, statusCode(he.Code), msg
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			msg := k.message
			if msg == "" {
				msg = err.Error()
			}
			return k.status, k.code, msg
		}
	}
	return http.StatusInternalServerError, "internal_error", "internal error"
}

// ErrorHandler writes every error as {"error": message, "code": code}.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, code, msg := Classify(err)
		if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
			logger.Error("request failed",
				slog.String("method", c.Request().Method),
				slog.String("path", c.Path()),
				slog.Any("err", err))
		}
		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, echo.Map{"error": msg, "code": code})
		}
		if werr != nil {
			logger.Warn("write error response", slog.Any("err", werr))
		}
	}
}

// statusCode turns "Request Entity Too Large" into "request_entity_too_large".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
