package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck-api/internal/core/domain"
	"github.com/taskdeck/taskdeck-api/internal/core/ports"
)

// Authenticate resolves the bearer token against the identity backend and
// loads the caller's profile. It runs on every request; nothing is cached
// between requests. On success it stores user_id, email, and role in the
// request context.
func Authenticate(identity ports.IdentityProvider, profiles ports.ProfileRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}
			token := parts[1]

			// Unverified peek at the subject claim for log correlation only.
			// The backend is the sole authority on token validity.
			if sub := peekSubject(token); sub != "" {
				log.Debug().Str("sub", sub).Str("path", c.Path()).Msg("verifying token")
			}

			ctx := c.Request().Context()
			ident, err := identity.VerifyToken(ctx, token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			profile, err := profiles.FindByID(ctx, ident.ID)
			if err != nil {
				if errors.Is(err, domain.ErrProfileNotFound) {
					return echo.NewHTTPError(http.StatusForbidden, "no profile for identity")
				}
				log.Error().Err(err).Str("identity_id", ident.ID).Msg("role lookup failed")
				return echo.NewHTTPError(http.StatusForbidden, "role lookup failed")
			}

			c.Set("user_id", ident.ID)
			c.Set("email", ident.Email)
			c.Set("role", profile.Role)

			return next(c)
		}
	}
}

// RequireRole gates a route to the given roles. Must run after Authenticate.
func RequireRole(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// peekSubject extracts the sub claim without verifying the signature.
func peekSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
