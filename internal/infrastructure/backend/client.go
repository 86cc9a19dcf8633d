// Package backend is the HTTP adapter for the external identity & storage
// service: a GoTrue-style auth API plus a PostgREST-style row API, both
// behind one base URL. The privileged service key authenticates every call
// except token verification, which presents the caller's own token.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config captures the settings needed to reach the backend.
type Config struct {
	URL        string
	ServiceKey string
	Timeout    time.Duration
}

// Client wraps a resty client pointed at the backend base URL.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	hc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.URL, "/")).
		SetTimeout(timeout).
		SetHeader("apikey", cfg.ServiceKey).
		SetHeader("Authorization", "Bearer "+cfg.ServiceKey).
		SetHeader("Accept", "application/json")

	return &Client{http: hc, log: log}
}

// VerifyToken resolves a bearer token against the auth API. The request
// carries the caller's token, not the service key.
func (c *Client) VerifyToken(ctx context.Context, token string) (*domain.Identity, error) {
	var identity domain.Identity
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetResult(&identity).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	if resp.StatusCode() == 401 || resp.StatusCode() == 403 {
		return nil, domain.ErrUnauthenticated
	}
	if err := asBackendError(resp); err != nil {
		return nil, err
	}
	if identity.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &identity, nil
}

// SignInWithPassword exchanges credentials for a session via the password
// grant. Bad credentials come back as a 400 BackendError; the auth service
// translates that for callers.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	var session domain.Session
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&session).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if err := asBackendError(resp); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateIdentity registers a credential record via the admin API.
func (c *Client) CreateIdentity(ctx context.Context, email, password string, preverified bool) (*domain.Identity, error) {
	var identity domain.Identity
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"email":         email,
			"password":      password,
			"email_confirm": preverified,
		}).
		SetResult(&identity).
		Post("/auth/v1/admin/users")
	if err != nil {
		return nil, fmt.Errorf("create identity: %w", err)
	}
	if err := asBackendError(resp); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (c *Client) UpdateIdentityPassword(ctx context.Context, id, password string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"password": password}).
		Put("/auth/v1/admin/users/" + id)
	if err != nil {
		return fmt.Errorf("update identity password: %w", err)
	}
	return asBackendError(resp)
}

func (c *Client) DeleteIdentity(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/auth/v1/admin/users/" + id)
	if err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return asBackendError(resp)
}

// HealthCheck probes the auth API's health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/auth/v1/health")
	if err != nil {
		return fmt.Errorf("backend health: %w", err)
	}
	return asBackendError(resp)
}

type errorBody struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	ErrorField       string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// asBackendError converts a non-2xx response into a BackendError preserving
// whichever message field the backend used.
func asBackendError(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}

	var body errorBody
	_ = json.Unmarshal(resp.Body(), &body)

	msg := body.Message
	for _, candidate := range []string{body.Msg, body.ErrorDescription, body.ErrorField} {
		if msg != "" {
			break
		}
		msg = candidate
	}
	if msg == "" {
		msg = resp.Status()
	}

	return &domain.BackendError{Status: resp.StatusCode(), Message: msg}
}
