package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/skvortsov/todoapp/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByLogin resolves a login identifier that may be either a
// username or an email address.
func (r *GormRepo) FindUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Where("username = ? OR email = ?", login, login).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindUserByID projects only the fields safe to attach to a request:
// never the password hash or the stored refresh token.
func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.DB.WithContext(ctx).
		Select("id", "username", "email", "role", "country", "age", "created_at").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// StoreRefreshToken overwrites the user's sole stored refresh token.
// A nil token clears it (logout); overwriting on login/refresh silently
// invalidates whatever was stored before, which is the intended
// single-active-session semantics.
func (r *GormRepo) StoreRefreshToken(ctx context.Context, userID uint, token *string) error {
	return r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token).Error
}
