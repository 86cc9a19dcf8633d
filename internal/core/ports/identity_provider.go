package ports

import (
	"context"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

// IdentityProvider is the capability set the service needs from the external
// identity backend's auth API. All credential handling (hashing, token
// issuance, verification) lives behind this interface.
type IdentityProvider interface {
	// VerifyToken resolves a bearer token to the identity it was issued for.
	VerifyToken(ctx context.Context, token string) (*domain.Identity, error)
	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	// CreateIdentity registers a new credential record. When preverified is
	// true the email is marked confirmed so no verification mail is sent.
	CreateIdentity(ctx context.Context, email, password string, preverified bool) (*domain.Identity, error)
	// UpdateIdentityPassword replaces the password on an existing identity.
	UpdateIdentityPassword(ctx context.Context, id, password string) error
	// DeleteIdentity removes a credential record. Used to roll back a
	// partially completed user creation.
	DeleteIdentity(ctx context.Context, id string) error
}
