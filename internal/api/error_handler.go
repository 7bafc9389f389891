package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/omar-arnous/acquisitions/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps every domain.ErrorKind to its HTTP status code.
//   - Logs server-side failures internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	kind := domain.KindOf(err)
	switch kind {
	case domain.KindUnauthorized:
		return http.StatusUnauthorized, domain.Message(err, "authentication required")
	case domain.KindForbidden:
		return http.StatusForbidden, domain.Message(err, "access forbidden")
	case domain.KindNotFound:
		return http.StatusNotFound, domain.Message(err, "not found")
	case domain.KindAlreadyExists:
		return http.StatusConflict, domain.Message(err, "already exists")
	case domain.KindInvalidCredentials:
		return http.StatusUnauthorized, domain.Message(err, "invalid credentials")
	case domain.KindInvalidInput:
		return http.StatusBadRequest, domain.Message(err, "invalid input")
	case domain.KindTooManyAttempts:
		return http.StatusTooManyRequests, domain.Message(err, "too many attempts")
	case domain.KindInvalidToken:
		log.Warn().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("token rejected")
		return http.StatusUnauthorized, "invalid or expired token"
	case domain.KindHashing, domain.KindInternal:
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("kind", kind.String()).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
