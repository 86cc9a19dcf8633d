package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskdeck/taskdeck-api/internal/api/metrics"
	"github.com/taskdeck/taskdeck-api/internal/core/domain"
	"github.com/taskdeck/taskdeck-api/internal/core/ports"
)

// AdminHandler exposes the user-management commands on a single endpoint.
// Requests carry an action name plus a nested payload; each action decodes
// into its own typed, validated request before reaching the service.
type AdminHandler struct {
	service ports.AdminService
}

func NewAdminHandler(service ports.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type commandEnvelope struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	Password string `json:"password" validate:"omitempty,min=8"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	ID   string  `json:"id" validate:"required"`
	Name *string `json:"name"`
	Role *string `json:"role"`
}

type setPasswordRequest struct {
	ID       string `json:"id" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type listUsersResponse struct {
	Users []domain.Profile `json:"users"`
}

type createUserResponse struct {
	ID                string `json:"id"`
	GeneratedPassword string `json:"generated_password,omitempty"`
}

type updateUserResponse struct {
	User *domain.Profile `json:"user"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// Dispatch handles POST /v1/admin/users.
//
// @Summary      Dispatch an admin user-management command
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      commandEnvelope  true  "Command envelope: action plus payload"
// @Success      200   {object}  listUsersResponse
// @Success      201   {object}  createUserResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /v1/admin/users [post]
func (h *AdminHandler) Dispatch(c echo.Context) error {
	actor, _, err := ctxCaller(c)
	if err != nil {
		return err
	}

	var env commandEnvelope
	if err := c.Bind(&env); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	start := time.Now()
	err = h.dispatch(c, actor, env)
	observeCommand(env.Action, start, err)
	return err
}

func (h *AdminHandler) dispatch(c echo.Context, actor string, env commandEnvelope) error {
	switch env.Action {
	case ports.ActionList:
		return h.listUsers(c)
	case ports.ActionCreate:
		return h.createUser(c, actor, env.Payload)
	case ports.ActionUpdate:
		return h.updateUser(c, actor, env.Payload)
	case ports.ActionSetPassword:
		return h.setPassword(c, actor, env.Payload)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownAction, env.Action)
	}
}

func (h *AdminHandler) listUsers(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.Profile{}
	}
	return c.JSON(http.StatusOK, listUsersResponse{Users: users})
}

func (h *AdminHandler) createUser(c echo.Context, actor string, payload json.RawMessage) error {
	var req createUserRequest
	if err := decodePayload(c, payload, &req); err != nil {
		return err
	}

	res, err := h.service.CreateUser(c.Request().Context(), actor, ports.CreateUserCommand{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createUserResponse{
		ID:                res.ID,
		GeneratedPassword: res.GeneratedPassword,
	})
}

func (h *AdminHandler) updateUser(c echo.Context, actor string, payload json.RawMessage) error {
	var req updateUserRequest
	if err := decodePayload(c, payload, &req); err != nil {
		return err
	}

	profile, err := h.service.UpdateUser(c.Request().Context(), actor, ports.UpdateUserCommand{
		ID:   req.ID,
		Name: req.Name,
		Role: req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updateUserResponse{User: profile})
}

func (h *AdminHandler) setPassword(c echo.Context, actor string, payload json.RawMessage) error {
	var req setPasswordRequest
	if err := decodePayload(c, payload, &req); err != nil {
		return err
	}

	if err := h.service.SetPassword(c.Request().Context(), actor, ports.SetPasswordCommand{
		ID:       req.ID,
		Password: req.Password,
	}); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// decodePayload unmarshals the nested payload into dest and validates it.
// A missing payload decodes as an empty object so required-field messages
// stay uniform.
func decodePayload(c echo.Context, payload json.RawMessage, dest any) error {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(dest); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	return nil
}

func observeCommand(action string, start time.Time, err error) {
	if action == "" {
		action = "none"
	}
	metrics.AdminCommandDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	metrics.AdminCommandsTotal.WithLabelValues(action, commandOutcome(err)).Inc()
}

func commandOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case isInvalidInput(err):
		return "invalid_input"
	case isBackendError(err):
		return "backend_error"
	default:
		return "error"
	}
}

func isInvalidInput(err error) bool {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrUnknownAction) {
		return true
	}
	var he *echo.HTTPError
	return errors.As(err, &he) && he.Code == http.StatusBadRequest
}

func isBackendError(err error) bool {
	var be *domain.BackendError
	return errors.As(err, &be)
}
