package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/skvortsov/todoapp/internal/models"
)

func (r *GormRepo) CreateCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Create(cat).Error
}

func (r *GormRepo) ListCategories(ctx context.Context, userID uint) ([]models.Category, error) {
	var cats []models.Category
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&cats).Error
	return cats, err
}

func (r *GormRepo) FindCategoryOwned(ctx context.Context, id, userID uint) (*models.Category, error) {
	return firstOwned[models.Category](ctx, r.DB, id, userID)
}

// CategoryNameTaken reports whether the user already has a category
// with this name. excludeID skips the record being renamed.
func (r *GormRepo) CategoryNameTaken(ctx context.Context, userID uint, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).
		Model(&models.Category{}).
		Where("user_id = ? AND name = ?", userID, name)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) UpdateCategory(ctx context.Context, cat *models.Category) error {
	return r.DB.WithContext(ctx).Save(cat).Error
}

// DeleteCategory detaches the user's todos from the category before
// removing it, keeping the category foreign key satisfied.
func (r *GormRepo) DeleteCategory(ctx context.Context, id, userID uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Todo{}).
			Where("category_id = ? AND user_id = ?", id, userID).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}
		return tx.
			Where("id = ? AND user_id = ?", id, userID).
			Delete(&models.Category{}).Error
	})
}
