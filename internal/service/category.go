package service

import (
	"context"
	"errors"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/logging"
	"github.com/skvortsov/todoapp/internal/models"
	"github.com/skvortsov/todoapp/internal/repo"
)

type CategoryService struct {
	Repo *repo.GormRepo
}

type CategoryParams struct {
	Name  *string
	Color *string
}

func (s *CategoryService) Create(ctx context.Context, userID uint, name string, color *string) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "category.create")

	taken, err := s.Repo.CategoryNameTaken(ctx, userID, name, 0)
	if err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	if taken {
		return nil, apierr.Conflict("category already exists")
	}

	cat := models.Category{Name: name, Color: color, UserID: userID}
	if err := s.Repo.CreateCategory(ctx, &cat); err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	return &cat, nil
}

func (s *CategoryService) List(ctx context.Context, userID uint) ([]models.Category, error) {
	cats, err := s.Repo.ListCategories(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("category_list_failed", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	return cats, nil
}

func (s *CategoryService) Get(ctx context.Context, id, userID uint) (*models.Category, error) {
	cat, err := s.Repo.FindCategoryOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.NotFound("category not found")
		}
		logging.FromContext(ctx).Error("category_get_failed", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	return cat, nil
}

func (s *CategoryService) Update(ctx context.Context, id, userID uint, p CategoryParams) (*models.Category, error) {
	l := logging.FromContext(ctx).With("svc", "category.update")

	cat, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		taken, err := s.Repo.CategoryNameTaken(ctx, userID, *p.Name, id)
		if err != nil {
			l.Error("update_failed", "status", 500, "error", err)
			return nil, apierr.Internal("Internal Server Error")
		}
		if taken {
			return nil, apierr.Conflict("category name already exists")
		}
		cat.Name = *p.Name
	}
	if p.Color != nil {
		cat.Color = p.Color
	}

	if err := s.Repo.UpdateCategory(ctx, cat); err != nil {
		l.Error("update_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	return cat, nil
}

func (s *CategoryService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	if err := s.Repo.DeleteCategory(ctx, id, userID); err != nil {
		logging.FromContext(ctx).Error("category_delete_failed", "error", err)
		return apierr.Internal("Internal Server Error")
	}
	return nil
}
