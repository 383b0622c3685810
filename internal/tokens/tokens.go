package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/skvortsov/todoapp/internal/models"
)

// UserClaims is the payload carried by both token classes: the user's
// identity plus the registered claims. Refresh tokens additionally get
// a unique JTI so rotations are distinguishable in logs.
type UserClaims struct {
	UserID   uint   `json:"id"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func SignAccess(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	return sign(user, secret, ttl, "")
}

func SignRefresh(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	return sign(user, secret, ttl, uuid.NewString())
}

func sign(user *models.User, secret []byte, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	claims := UserClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        jti,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Parse verifies the signature and expiry of a token against the secret
// of its class. The caller treats every failure as the same unauthorized
// outcome; expired vs tampered matters only for logging.
func Parse(tokenStr string, secret []byte) (*UserClaims, error) {
	var claims UserClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return &claims, nil
}
