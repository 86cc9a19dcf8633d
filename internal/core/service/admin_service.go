package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
	"github.com/taskdeck/taskdeck-api/internal/core/ports"
)

const minPasswordLength = 8

// AdminService implements the administrative user-management commands on top
// of the identity backend and the profile row store.
type AdminService struct {
	identity ports.IdentityProvider
	profiles ports.ProfileRepository
	audit    ports.AuditSink
	logger   zerolog.Logger
}

func NewAdminService(identity ports.IdentityProvider, profiles ports.ProfileRepository, audit ports.AuditSink, logger zerolog.Logger) *AdminService {
	return &AdminService{identity: identity, profiles: profiles, audit: audit, logger: logger}
}

// ListUsers returns every profile, newest first. No pagination.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.Profile, error) {
	return s.profiles.List(ctx)
}

// CreateUser registers an identity and upserts its profile row. The two
// steps are not transactional: on upsert failure the identity is deleted
// again, and if that rollback also fails the caller receives a
// ReconciliationError carrying the orphaned identity id.
func (s *AdminService) CreateUser(ctx context.Context, actor string, cmd ports.CreateUserCommand) (*ports.CreateUserResult, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}

	password := cmd.Password
	generated := ""
	if password == "" {
		generated = generatePassword()
		password = generated
	} else if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	role := domain.NormalizeRole(cmd.Role)

	identity, err := s.identity.CreateIdentity(ctx, email, password, true)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("identity creation failed")
		return nil, err
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:        identity.ID,
		Email:     email,
		Name:      cmd.Name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.logger.Error().Err(err).Str("identity_id", identity.ID).Msg("profile upsert failed, rolling back identity")
		if delErr := s.identity.DeleteIdentity(ctx, identity.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("identity_id", identity.ID).Msg("identity rollback failed")
			return nil, &domain.ReconciliationError{IdentityID: identity.ID, Cause: err}
		}
		return nil, err
	}

	s.audit.Record(domain.AuditEvent{
		Actor:     actor,
		Action:    ports.ActionCreate,
		TargetID:  identity.ID,
		Detail:    fmt.Sprintf("email=%s role=%s", email, role),
		CreatedAt: now,
	})
	s.logger.Info().Str("identity_id", identity.ID).Str("role", role).Msg("user created")

	return &ports.CreateUserResult{ID: identity.ID, GeneratedPassword: generated}, nil
}

// UpdateUser patches a profile's name and role. The credential record is
// untouched. Applying the same patch twice yields the same final state.
func (s *AdminService) UpdateUser(ctx context.Context, actor string, cmd ports.UpdateUserCommand) (*domain.Profile, error) {
	if cmd.ID == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	patch := ports.ProfilePatch{
		Name:      cmd.Name,
		UpdatedAt: time.Now().UTC(),
	}
	if cmd.Role != nil {
		role := domain.NormalizeRole(*cmd.Role)
		patch.Role = &role
	}

	if err := s.profiles.Update(ctx, cmd.ID, patch); err != nil {
		s.logger.Error().Err(err).Str("id", cmd.ID).Msg("profile update failed")
		return nil, err
	}

	s.audit.Record(domain.AuditEvent{
		Actor:     actor,
		Action:    ports.ActionUpdate,
		TargetID:  cmd.ID,
		CreatedAt: patch.UpdatedAt,
	})

	return s.profiles.FindByID(ctx, cmd.ID)
}

// SetPassword replaces a user's password via the identity backend. The
// profile row is untouched.
func (s *AdminService) SetPassword(ctx context.Context, actor string, cmd ports.SetPasswordCommand) error {
	if cmd.ID == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}
	if cmd.Password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	if len(cmd.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	if err := s.identity.UpdateIdentityPassword(ctx, cmd.ID, cmd.Password); err != nil {
		s.logger.Error().Err(err).Str("id", cmd.ID).Msg("password update failed")
		return err
	}

	s.audit.Record(domain.AuditEvent{
		Actor:     actor,
		Action:    ports.ActionSetPassword,
		TargetID:  cmd.ID,
		CreatedAt: time.Now().UTC(),
	})

	return nil
}

const passwordLength = 14

// generatePassword returns a fixed-length temporary password containing at
// least one lowercase letter, one uppercase letter, one digit, and a literal
// "!". Ambiguous characters (l, o, 0, 1, I, O) are excluded.
func generatePassword() string {
	const lowers = "abcdefghijkmnpqrstuvwxyz"
	const uppers = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const mixed = lowers + uppers + digits

	buf := make([]byte, passwordLength)
	raw := make([]byte, passwordLength)
	if _, err := rand.Read(raw); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// there is no safe fallback for credential material.
		panic(fmt.Sprintf("service: read random bytes: %v", err))
	}

	for i := 0; i < passwordLength-3; i++ {
		buf[i] = mixed[int(raw[i])%len(mixed)]
	}
	buf[passwordLength-3] = lowers[int(raw[passwordLength-3])%len(lowers)]
	buf[passwordLength-2] = uppers[int(raw[passwordLength-2])%len(uppers)]
	buf[passwordLength-1] = digits[int(raw[passwordLength-1])%len(digits)]

	// Swap a random alphanumeric slot for the required symbol.
	buf[int(raw[0])%(passwordLength-3)] = '!'

	return string(buf)
}
