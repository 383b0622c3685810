package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/logging"
	"github.com/skvortsov/todoapp/internal/models"
	"github.com/skvortsov/todoapp/internal/repo"
	"github.com/skvortsov/todoapp/internal/tokens"
)

const identityKey = "identity"

// Identity is the resolved user attached to every authenticated
// request. It carries only safe fields, never the password hash or the
// stored refresh token.
type Identity struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Country   *string   `json:"country,omitempty"`
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Auth struct {
	Repo         *repo.GormRepo
	AccessSecret []byte
}

func NewAuth(r *repo.GormRepo, accessSecret []byte) *Auth {
	return &Auth{Repo: r, AccessSecret: accessSecret}
}

// RequireAuth validates the bearer access token, resolves it to a user
// and attaches the Identity to the request context. Terminal on the
// first failing step; every failure is the same 401.
func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "require_auth")

		raw := bearerToken(c)
		if raw == "" {
			return apierr.Unauthorized("unauthorized request")
		}

		claims, err := tokens.Parse(raw, a.AccessSecret)
		if err != nil {
			reason := "invalid signature"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "token expired"
			}
			l.Warn("auth_failed", "status", 401, "reason", reason)
			return apierr.Unauthorized("invalid access token")
		}

		user, err := a.Repo.FindUserByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				l.Warn("auth_failed", "status", 401, "reason", "user not found")
				return apierr.Unauthorized("invalid access token")
			}
			l.Error("auth_failed", "status", 500, "error", err)
			return apierr.Internal("Internal Server Error")
		}

		c.Set(identityKey, identityOf(user))
		return next(c)
	}
}

// BearerToken exposes the raw Authorization credential for the one
// route that authenticates with a refresh token instead of an access
// token.
func BearerToken(c echo.Context) string { return bearerToken(c) }

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		return ""
	}
	return strings.TrimSpace(token)
}

func identityOf(u *models.User) Identity {
	return Identity{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Country:   u.Country,
		Age:       u.Age,
		CreatedAt: u.CreatedAt,
	}
}

// IdentityFrom returns the Identity set by RequireAuth. Reaching a
// protected handler without one is a wiring bug, surfaced as 401.
func IdentityFrom(c echo.Context) (Identity, error) {
	id, ok := c.Get(identityKey).(Identity)
	if !ok {
		return Identity{}, apierr.Unauthorized("unauthorized request")
	}
	return id, nil
}
