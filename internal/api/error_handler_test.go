package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

func renderError(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	return rec, body
}

func TestErrorHandler_DomainMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid input", fmt.Errorf("%w: email is required", domain.ErrInvalidInput), http.StatusBadRequest},
		{"unknown action", fmt.Errorf("%w: %q", domain.ErrUnknownAction, "reboot"), http.StatusBadRequest},
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"profile not found", domain.ErrProfileNotFound, http.StatusForbidden},
		{"throttled", domain.ErrTooManyAttempts, http.StatusTooManyRequests},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, body := renderError(t, tc.err)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			if body["error"] == "" {
				t.Fatalf("expected error message in body")
			}
		})
	}
}

func TestErrorHandler_BackendErrorIsGeneric(t *testing.T) {
	rec, body := renderError(t, &domain.BackendError{Status: 503, Message: "db pool exhausted on node pg-7"})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != "backend request failed" {
		t.Fatalf("raw backend message leaked: %q", body["error"])
	}
}

func TestErrorHandler_ReconciliationError(t *testing.T) {
	rec, body := renderError(t, &domain.ReconciliationError{
		IdentityID: "u-orphan",
		Cause:      errors.New("profile upsert timed out"),
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != "user creation incomplete, contact support" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

func TestErrorHandler_EchoHTTPErrorPassthrough(t *testing.T) {
	rec, body := renderError(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if body["error"] != "Method Not Allowed" {
		t.Fatalf("unexpected message: %q", body["error"])
	}
}

func TestErrorHandler_UnknownErrorIsGeneric(t *testing.T) {
	rec, body := renderError(t, errors.New("some internal detail"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("internal detail leaked: %q", body["error"])
	}
}
