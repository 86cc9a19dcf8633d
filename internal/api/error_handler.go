package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs backend failures with their raw message but returns a generic
//     message to the client; this is an admin surface, but raw backend text
//     still does not belong in responses.
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
	// Echo's own errors (bind failures, 404/405 from the router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownAction):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrProfileNotFound):
		return http.StatusForbidden, "access forbidden"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, "too many attempts, retry later"
	}

	// Partial user creation with failed rollback: log the orphan id for
	// out-of-band cleanup, keep the response generic.
	var re *domain.ReconciliationError
	if errors.As(err, &re) {
		log.Error().
			Err(re.Cause).
			Str("identity_id", re.IdentityID).
			Str("path", c.Path()).
			Msg("orphaned identity requires reconciliation")
		return http.StatusInternalServerError, "user creation incomplete, contact support"
	}

	// Backend failures: raw message server-side only.
	var be *domain.BackendError
	if errors.As(err, &be) {
		log.Error().
			Int("backend_status", be.Status).
			Str("backend_message", be.Message).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("backend request failed")
		return http.StatusInternalServerError, "backend request failed"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
