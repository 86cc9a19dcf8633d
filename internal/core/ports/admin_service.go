package ports

import (
	"context"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

// Admin command actions. The HTTP layer decodes the request envelope into
// exactly one of the typed commands below; an unrecognised action never
// reaches the service.
const (
	ActionList        = "list"
	ActionCreate      = "create"
	ActionUpdate      = "update"
	ActionSetPassword = "setPassword"
)

// CreateUserCommand creates an identity plus its profile row.
type CreateUserCommand struct {
	Email    string
	Name     string
	Password string // optional; generated when empty
	Role     string // coerced to user/admin
}

// UpdateUserCommand patches a profile's name and role. It never touches the
// credential record.
type UpdateUserCommand struct {
	ID   string
	Name *string
	Role *string
}

// SetPasswordCommand replaces a user's password via the identity backend.
// It never touches the profile row.
type SetPasswordCommand struct {
	ID       string
	Password string
}

// CreateUserResult reports the new identity id and, when the service had to
// generate one, the password to relay to the user out-of-band.
type CreateUserResult struct {
	ID                string
	GeneratedPassword string
}

// AdminService implements the administrative user-management commands.
// Callers are assumed to be authorized admins; the guard runs upstream.
type AdminService interface {
	ListUsers(ctx context.Context) ([]domain.Profile, error)
	CreateUser(ctx context.Context, actor string, cmd CreateUserCommand) (*CreateUserResult, error)
	UpdateUser(ctx context.Context, actor string, cmd UpdateUserCommand) (*domain.Profile, error)
	SetPassword(ctx context.Context, actor string, cmd SetPasswordCommand) error
}
