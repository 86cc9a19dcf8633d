package ports

import (
	"context"
	"time"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
)

// ProfilePatch carries the mutable profile fields for a partial update.
// Nil pointers mean "leave unchanged"; UpdatedAt is always written.
type ProfilePatch struct {
	Name      *string
	Role      *string
	UpdatedAt time.Time
}

// ProfileRepository persists profile rows in the backend row store.
type ProfileRepository interface {
	// List returns all profiles ordered by creation time, newest first.
	List(ctx context.Context) ([]domain.Profile, error)
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, profile *domain.Profile) error
	Update(ctx context.Context, id string, patch ProfilePatch) error
}
