package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/skvortsov/todoapp/internal/models"
	"github.com/skvortsov/todoapp/internal/util"
)

// TodoFilter narrows a user's todo listing. Due-date bounds are
// inclusive on both ends. Page and Limit are validated by the caller.
type TodoFilter struct {
	Completed  *bool
	CategoryID *uint
	DueBefore  *time.Time
	DueAfter   *time.Time
	Page       int
	Limit      int
}

func (r *GormRepo) CreateTodo(ctx context.Context, todo *models.Todo) error {
	return r.DB.WithContext(ctx).Create(todo).Error
}

func (r *GormRepo) FindTodoOwned(ctx context.Context, id, userID uint) (*models.Todo, error) {
	return firstOwned[models.Todo](ctx, r.DB, id, userID, "Category")
}

// ListTodos fetches one page plus the total count inside a single
// transaction so a concurrent insert or delete cannot make the two
// disagree.
func (r *GormRepo) ListTodos(ctx context.Context, userID uint, f TodoFilter) ([]models.Todo, int64, error) {
	scope := func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if f.Completed != nil {
			q = q.Where("completed = ?", *f.Completed)
		}
		if f.CategoryID != nil {
			q = q.Where("category_id = ?", *f.CategoryID)
		}
		if f.DueBefore != nil {
			q = q.Where("due_date <= ?", *f.DueBefore)
		}
		if f.DueAfter != nil {
			q = q.Where("due_date >= ?", *f.DueAfter)
		}
		return q
	}

	var items []models.Todo
	var total int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scope(tx.Model(&models.Todo{})).Count(&total).Error; err != nil {
			return err
		}
		return scope(tx.Model(&models.Todo{})).
			Preload("Category").
			Order("created_at DESC, id DESC").
			Offset(util.Offset(f.Page, f.Limit)).
			Limit(f.Limit).
			Find(&items).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateTodo applies only the given columns; the row is expected to
// have been fetched through FindTodoOwned first.
func (r *GormRepo) UpdateTodo(ctx context.Context, id uint, updates map[string]any) error {
	return r.DB.WithContext(ctx).
		Model(&models.Todo{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *GormRepo) DeleteTodo(ctx context.Context, id, userID uint) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Todo{}).Error
}
