package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/events"
	"github.com/skvortsov/todoapp/internal/hash"
	"github.com/skvortsov/todoapp/internal/logging"
	"github.com/skvortsov/todoapp/internal/models"
	"github.com/skvortsov/todoapp/internal/repo"
	"github.com/skvortsov/todoapp/internal/tokens"
)

// Both login failure modes surface this exact message so the response
// carries no user-enumeration signal.
const msgInvalidCredentials = "invalid username or password"

type AuthService struct {
	Repo          *repo.GormRepo
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Events        *events.Producer
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type AuthResult struct {
	User *models.User
	Pair TokenPair
}

type RegisterParams struct {
	Username string
	Email    string
	Password string
	Country  *string
	Age      *int
}

func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if _, err := s.Repo.FindUserByEmail(ctx, p.Email); err == nil {
		l.Warn("register_failed", "status", 409, "reason", "email already in use")
		return nil, apierr.Conflict("user with this email already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	pwHash, err := hash.HashPassword(p.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	user := models.User{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		Country:      p.Country,
		Age:          p.Age,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			l.Warn("register_failed", "status", 409, "reason", "username already in use")
			return nil, apierr.Conflict("user with this username already exists")
		}
		l.Error("register_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	pair, err := s.issuePair(ctx, &user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_registered",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("register_successful", "user_id", user.ID)
	return &AuthResult{User: &user, Pair: *pair}, nil
}

func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, apierr.Unauthorized(msgInvalidCredentials)
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, apierr.Unauthorized(msgInvalidCredentials)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})

	l.Info("login_successful", "user_id", user.ID)
	return &AuthResult{User: user, Pair: *pair}, nil
}

// Refresh verifies the presented refresh token against the refresh
// secret's signature and expiry only; the stored value is not compared
// token-for-token. A rotated-out token therefore keeps working until
// its own expiry.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := tokens.Parse(rawToken, s.RefreshSecret)
	if err != nil {
		reason := "invalid signature"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "token expired"
		}
		l.Warn("refresh_failed", "status", 401, "reason", reason)
		return nil, apierr.Unauthorized("invalid refresh token")
	}

	user, err := s.Repo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "user not found")
			return nil, apierr.Unauthorized("invalid refresh token")
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return pair, nil
}

// Logout clears the stored refresh token best-effort: a persistence
// failure is logged but never fails the logout response.
func (s *AuthService) Logout(ctx context.Context, userID uint) {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if err := s.Repo.StoreRefreshToken(ctx, userID, nil); err != nil {
		l.Warn("logout_revoke_failed", "user_id", userID, "error", err)
		return
	}
	l.Info("logout_successful", "user_id", userID)
}

// issuePair signs a fresh access/refresh pair and overwrites the
// stored refresh token, invalidating any prior session's stored value.
func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.issue_pair")

	access, err := tokens.SignAccess(user, s.AccessSecret, s.AccessTTL)
	if err != nil {
		l.Error("sign_access_failed", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	refresh, err := tokens.SignRefresh(user, s.RefreshSecret, s.RefreshTTL)
	if err != nil {
		l.Error("sign_refresh_failed", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	if err := s.Repo.StoreRefreshToken(ctx, user.ID, &refresh); err != nil {
		l.Error("store_refresh_failed", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
