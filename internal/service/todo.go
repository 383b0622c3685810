package service

import (
	"context"
	"errors"
	"time"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/events"
	"github.com/skvortsov/todoapp/internal/logging"
	"github.com/skvortsov/todoapp/internal/models"
	"github.com/skvortsov/todoapp/internal/repo"
	"github.com/skvortsov/todoapp/internal/util"
)

type TodoService struct {
	Repo   *repo.GormRepo
	Events *events.Producer
}

type CreateTodoParams struct {
	Title       string
	Description *string
	DueDate     *time.Time
	CategoryID  *uint
}

type UpdateTodoParams struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
	CategoryID  *uint
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"totalPages"`
}

type TodoPage struct {
	Todos      []models.Todo `json:"todos"`
	Pagination Pagination    `json:"pagination"`
}

func (s *TodoService) Create(ctx context.Context, userID uint, p CreateTodoParams) (*models.Todo, error) {
	l := logging.FromContext(ctx).With("svc", "todo.create")

	if p.CategoryID != nil {
		if _, err := s.Repo.FindCategoryOwned(ctx, *p.CategoryID, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apierr.BadRequest("invalid category id")
			}
			l.Error("create_failed", "status", 500, "error", err)
			return nil, apierr.Internal("Internal Server Error")
		}
	}

	todo := models.Todo{
		Title:       p.Title,
		Description: p.Description,
		DueDate:     p.DueDate,
		UserID:      userID,
		CategoryID:  p.CategoryID,
	}
	if err := s.Repo.CreateTodo(ctx, &todo); err != nil {
		l.Error("create_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	s.publish(ctx, events.TopicTodoEvents, userID, map[string]any{
		"type":   "todo_created",
		"userID": userID,
		"todoID": todo.ID,
	})

	return &todo, nil
}

func (s *TodoService) List(ctx context.Context, userID uint, f repo.TodoFilter) (*TodoPage, error) {
	items, total, err := s.Repo.ListTodos(ctx, userID, f)
	if err != nil {
		logging.FromContext(ctx).Error("todo_list_failed", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	return &TodoPage{
		Todos: items,
		Pagination: Pagination{
			Total:      total,
			Page:       f.Page,
			Limit:      f.Limit,
			TotalPages: util.TotalPages(total, f.Limit),
		},
	}, nil
}

func (s *TodoService) Get(ctx context.Context, id, userID uint) (*models.Todo, error) {
	todo, err := s.Repo.FindTodoOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.NotFound("todo not found")
		}
		logging.FromContext(ctx).Error("todo_get_failed", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	return todo, nil
}

// Update applies only the fields explicitly present in the request.
func (s *TodoService) Update(ctx context.Context, id, userID uint, p UpdateTodoParams) (*models.Todo, error) {
	l := logging.FromContext(ctx).With("svc", "todo.update")

	if _, err := s.Get(ctx, id, userID); err != nil {
		return nil, err
	}

	if p.CategoryID != nil {
		if _, err := s.Repo.FindCategoryOwned(ctx, *p.CategoryID, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, apierr.NotFound("category not found or does not belong to this user")
			}
			l.Error("update_failed", "status", 500, "error", err)
			return nil, apierr.Internal("Internal Server Error")
		}
	}

	updates := map[string]any{}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.Completed != nil {
		updates["completed"] = *p.Completed
	}
	if p.DueDate != nil {
		updates["due_date"] = *p.DueDate
	}
	if p.CategoryID != nil {
		updates["category_id"] = *p.CategoryID
	}

	if err := s.Repo.UpdateTodo(ctx, id, updates); err != nil {
		l.Error("update_failed", "status", 500, "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}
	return s.Get(ctx, id, userID)
}

// Toggle flips the completed flag unconditionally.
func (s *TodoService) Toggle(ctx context.Context, id, userID uint) (*models.Todo, error) {
	todo, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateTodo(ctx, id, map[string]any{"completed": !todo.Completed}); err != nil {
		logging.FromContext(ctx).Error("todo_toggle_failed", "error", err)
		return nil, apierr.Internal("Internal Server Error")
	}

	s.publish(ctx, events.TopicTodoEvents, userID, map[string]any{
		"type":   "todo_toggled",
		"userID": userID,
		"todoID": id,
	})

	return s.Get(ctx, id, userID)
}

func (s *TodoService) Delete(ctx context.Context, id, userID uint) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	if err := s.Repo.DeleteTodo(ctx, id, userID); err != nil {
		logging.FromContext(ctx).Error("todo_delete_failed", "error", err)
		return apierr.Internal("Internal Server Error")
	}

	s.publish(ctx, events.TopicTodoEvents, userID, map[string]any{
		"type":   "todo_deleted",
		"userID": userID,
		"todoID": id,
	})

	return nil
}
