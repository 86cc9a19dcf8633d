package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
	"github.com/taskdeck/taskdeck-api/internal/core/ports"
)

type stubAdminService struct {
	listFn        func(ctx context.Context) ([]domain.Profile, error)
	createFn      func(ctx context.Context, actor string, cmd ports.CreateUserCommand) (*ports.CreateUserResult, error)
	updateFn      func(ctx context.Context, actor string, cmd ports.UpdateUserCommand) (*domain.Profile, error)
	setPasswordFn func(ctx context.Context, actor string, cmd ports.SetPasswordCommand) error

	createCalls      int
	setPasswordCalls int
}

func (s *stubAdminService) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	return s.listFn(ctx)
}

func (s *stubAdminService) CreateUser(ctx context.Context, actor string, cmd ports.CreateUserCommand) (*ports.CreateUserResult, error) {
	s.createCalls++
	return s.createFn(ctx, actor, cmd)
}

func (s *stubAdminService) UpdateUser(ctx context.Context, actor string, cmd ports.UpdateUserCommand) (*domain.Profile, error) {
	return s.updateFn(ctx, actor, cmd)
}

func (s *stubAdminService) SetPassword(ctx context.Context, actor string, cmd ports.SetPasswordCommand) error {
	s.setPasswordCalls++
	return s.setPasswordFn(ctx, actor, cmd)
}

func dispatchRequest(t *testing.T, svc ports.AdminService, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/users", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "admin-1")
	c.Set("role", domain.RoleAdmin)

	h := NewAdminHandler(svc)
	return rec, h.Dispatch(c)
}

func TestAdminHandler_List(t *testing.T) {
	svc := &stubAdminService{
		listFn: func(context.Context) ([]domain.Profile, error) {
			return []domain.Profile{{ID: "u-2", Role: "user"}, {ID: "u-1", Role: "admin"}}, nil
		},
	}

	rec, err := dispatchRequest(t, svc, `{"action":"list"}`)
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string][]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	users := resp["users"]
	if len(users) != 2 || users[0]["id"] != "u-2" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestAdminHandler_Create_Success(t *testing.T) {
	svc := &stubAdminService{
		createFn: func(_ context.Context, actor string, cmd ports.CreateUserCommand) (*ports.CreateUserResult, error) {
			if actor != "admin-1" {
				t.Fatalf("unexpected actor: %s", actor)
			}
			if cmd.Email != "a@b.com" || cmd.Role != "admin" {
				t.Fatalf("unexpected command: %+v", cmd)
			}
			return &ports.CreateUserResult{ID: "u-9", GeneratedPassword: "Xy2!abcdefghij"}, nil
		},
	}

	rec, err := dispatchRequest(t, svc, `{"action":"create","payload":{"email":"a@b.com","role":"admin"}}`)
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["id"] != "u-9" || resp["generated_password"] == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminHandler_Create_InvalidEmail(t *testing.T) {
	svc := &stubAdminService{
		createFn: func(context.Context, string, ports.CreateUserCommand) (*ports.CreateUserResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}

	_, err := dispatchRequest(t, svc, `{"action":"create","payload":{"email":"not-an-email"}}`)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAdminHandler_Create_ShortPassword(t *testing.T) {
	svc := &stubAdminService{
		createFn: func(context.Context, string, ports.CreateUserCommand) (*ports.CreateUserResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}

	_, err := dispatchRequest(t, svc, `{"action":"create","payload":{"email":"a@b.com","password":"short"}}`)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if svc.createCalls != 0 {
		t.Fatalf("service must not be called, got %d calls", svc.createCalls)
	}
}

func TestAdminHandler_Update_Success(t *testing.T) {
	svc := &stubAdminService{
		updateFn: func(_ context.Context, _ string, cmd ports.UpdateUserCommand) (*domain.Profile, error) {
			if cmd.ID != "u1" || cmd.Role == nil || *cmd.Role != "admin" {
				t.Fatalf("unexpected command: %+v", cmd)
			}
			return &domain.Profile{ID: "u1", Role: "admin"}, nil
		},
	}

	rec, err := dispatchRequest(t, svc, `{"action":"update","payload":{"id":"u1","role":"admin"}}`)
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["user"]["id"] != "u1" || resp["user"]["role"] != "admin" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAdminHandler_Update_MissingID(t *testing.T) {
	svc := &stubAdminService{
		updateFn: func(context.Context, string, ports.UpdateUserCommand) (*domain.Profile, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}

	_, err := dispatchRequest(t, svc, `{"action":"update","payload":{"role":"admin"}}`)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAdminHandler_SetPassword_Success(t *testing.T) {
	svc := &stubAdminService{
		setPasswordFn: func(_ context.Context, _ string, cmd ports.SetPasswordCommand) error {
			if cmd.ID != "u1" || cmd.Password != "longenough" {
				t.Fatalf("unexpected command: %+v", cmd)
			}
			return nil
		},
	}

	rec, err := dispatchRequest(t, svc, `{"action":"setPassword","payload":{"id":"u1","password":"longenough"}}`)
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAdminHandler_SetPassword_MissingID(t *testing.T) {
	svc := &stubAdminService{
		setPasswordFn: func(context.Context, string, ports.SetPasswordCommand) error {
			t.Fatalf("service must not be called")
			return nil
		},
	}

	_, err := dispatchRequest(t, svc, `{"action":"setPassword","payload":{"password":"longenough"}}`)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if svc.setPasswordCalls != 0 {
		t.Fatalf("backend must not be invoked")
	}
}

func TestAdminHandler_UnknownAction(t *testing.T) {
	svc := &stubAdminService{}

	_, err := dispatchRequest(t, svc, `{"action":"reboot"}`)
	if !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}

func TestAdminHandler_MissingClaims(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/users", strings.NewReader(`{"action":"list"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewAdminHandler(&stubAdminService{})
	err := h.Dispatch(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
