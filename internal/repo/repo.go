package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound covers both an absent row and a row owned by another
// user; callers must not be able to tell the two apart.
var ErrNotFound = errors.New("record not found")

type GormRepo struct {
	DB *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

// firstOwned fetches a row by id scoped to its owning user. Every
// by-id read or mutation goes through this predicate so a foreign
// resource is indistinguishable from a missing one.
func firstOwned[T any](ctx context.Context, db *gorm.DB, id, userID uint, preloads ...string) (*T, error) {
	q := db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var res T
	if err := q.First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &res, nil
}
