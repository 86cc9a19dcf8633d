package backend

import (
	"context"
	"time"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
	"github.com/taskdeck/taskdeck-api/internal/core/ports"
)

const profilesTable = "profiles"

// ProfileRepository stores profiles in the backend row store.
type ProfileRepository struct {
	client *Client
}

func NewProfileRepository(client *Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

type profileRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *ProfileRepository) List(ctx context.Context) ([]domain.Profile, error) {
	var rows []profileRow
	if err := r.client.Select(ctx, profilesTable, nil, "created_at.desc", &rows); err != nil {
		return nil, err
	}

	profiles := make([]domain.Profile, 0, len(rows))
	for _, row := range rows {
		profiles = append(profiles, toProfile(row))
	}
	return profiles, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	var rows []profileRow
	if err := r.client.Select(ctx, profilesTable, map[string]string{"id": "eq." + id}, "", &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	profile := toProfile(rows[0])
	return &profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	return r.client.Upsert(ctx, profilesTable, profileRow{
		ID:        profile.ID,
		Email:     profile.Email,
		Name:      profile.Name,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt,
		UpdatedAt: profile.UpdatedAt,
	})
}

func (r *ProfileRepository) Update(ctx context.Context, id string, patch ports.ProfilePatch) error {
	fields := map[string]any{
		"updated_at": patch.UpdatedAt,
	}
	if patch.Name != nil {
		fields["name"] = *patch.Name
	}
	if patch.Role != nil {
		fields["role"] = *patch.Role
	}
	return r.client.Update(ctx, profilesTable, fields, map[string]string{"id": "eq." + id})
}

func toProfile(row profileRow) domain.Profile {
	return domain.Profile{
		ID:        row.ID,
		Email:     row.Email,
		Name:      row.Name,
		Role:      row.Role,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
