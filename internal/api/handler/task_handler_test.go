package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

type stubTaskService struct {
	listFn func(ctx context.Context, userID string) ([]domain.Task, error)
}

func (s *stubTaskService) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	return s.listFn(ctx, userID)
}

func TestTaskHandler_List(t *testing.T) {
	svc := &stubTaskService{
		listFn: func(_ context.Context, userID string) ([]domain.Task, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return []domain.Task{
				{ID: "t1", UserID: "u1", Title: "ship it", Status: "open", Subtasks: []domain.Subtask{
					{ID: "s1", TaskID: "t1", Title: "write tests", Done: true},
				}},
			}, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	c.Set("role", domain.RoleUser)

	h := NewTaskHandler(svc)
	if err := h.List(c); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string][]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	tasks := resp["tasks"]
	if len(tasks) != 1 || tasks[0]["id"] != "t1" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestTaskHandler_List_EmptyIsArray(t *testing.T) {
	svc := &stubTaskService{
		listFn: func(context.Context, string) ([]domain.Task, error) {
			return nil, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1")
	c.Set("role", domain.RoleUser)

	h := NewTaskHandler(svc)
	if err := h.List(c); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if got := rec.Body.String(); got != "{\"tasks\":[]}\n" {
		t.Fatalf("expected empty array body, got %q", got)
	}
}

func TestTaskHandler_List_MissingClaims(t *testing.T) {
	svc := &stubTaskService{
		listFn: func(context.Context, string) ([]domain.Task, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tasks", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := NewTaskHandler(svc)
	err := h.List(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
