package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
	"github.com/taskdeck/taskdeck-api/internal/core/ports"
)

// AuthService proxies the login page's credential exchange to the identity
// backend, with per-account throttling in front of it.
type AuthService struct {
	identity ports.IdentityProvider
	throttle ports.LoginThrottle
	logger   zerolog.Logger
}

func NewAuthService(identity ports.IdentityProvider, throttle ports.LoginThrottle, logger zerolog.Logger) *AuthService {
	return &AuthService{identity: identity, throttle: throttle, logger: logger}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, email)
		if err != nil {
			// Throttle store being down must not lock everyone out.
			s.logger.Warn().Err(err).Msg("login throttle unavailable")
		} else if !ok {
			s.logger.Info().Str("email", email).Msg("login throttled")
			return nil, domain.ErrTooManyAttempts
		}
	}

	session, err := s.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		var be *domain.BackendError
		if errors.As(err, &be) && be.Status == 400 {
			// The backend reports bad credentials as a 400 on the token
			// endpoint; translate rather than surfacing a backend failure.
			return nil, domain.ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Msg("login failed")
		return nil, err
	}

	return session, nil
}
