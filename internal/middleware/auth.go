package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/transport"
	"github.com/Skotchmaster/auth_service/pkg/logging"
	"github.com/Skotchmaster/auth_service/pkg/tokens"
)

const contextUserKey = "current_user"

// SessionGate is the single authorization checkpoint for protected routes:
// bearer token -> claims -> user lookup -> activity check. Every rejection is
// a 401; only the inactive-user case carries its own detail, the rest share
// one message so callers cannot tell an invalid token from an expired one or
// a deleted subject.
type SessionGate struct {
	Codec *tokens.Codec
	Repo  repo.UserRepository
}

func NewSessionGate(codec *tokens.Codec, users repo.UserRepository) *SessionGate {
	return &SessionGate{Codec: codec, Repo: users}
}

func (g *SessionGate) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "session_gate")

		raw := bearerToken(c)
		if raw == "" {
			return unauthorized(c, "Could not validate credentials")
		}

		claims, err := g.Codec.Parse(raw)
		if err != nil {
			// invalid vs expired stays internal, the response is uniform
			l.Debug("token_rejected", "error", err)
			return unauthorized(c, "Could not validate credentials")
		}

		user, err := g.Repo.Get(ctx, claims.Subject)
		if err != nil {
			if !errors.Is(err, repo.ErrNotFound) {
				l.Error("user_lookup_failed", "error", err)
			}
			return unauthorized(c, "Could not validate credentials")
		}

		if user.Disabled {
			l.Warn("inactive_user_rejected", "username", user.Username)
			return unauthorized(c, "Inactive user")
		}

		c.Set(contextUserKey, user.Public())
		return next(c)
	}
}

// CurrentUser returns the user resolved by RequireUser for this request.
func CurrentUser(c echo.Context) (models.PublicUser, bool) {
	u, ok := c.Get(contextUserKey).(models.PublicUser)
	return u, ok
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(c echo.Context, detail string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, transport.ErrorDetail{Detail: detail})
}
