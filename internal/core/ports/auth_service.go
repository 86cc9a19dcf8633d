package ports

import (
	"context"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

// AuthService backs the login page.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.Session, error)
}

// LoginThrottle limits repeated login attempts per account.
type LoginThrottle interface {
	// Allow reports whether another attempt is permitted for the key and
	// records the attempt.
	Allow(ctx context.Context, key string) (bool, error)
}
