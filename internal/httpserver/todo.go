package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/middleware"
	"github.com/skvortsov/todoapp/internal/repo"
	"github.com/skvortsov/todoapp/internal/service"
)

type TodoHandler struct {
	Svc *service.TodoService
}

type createTodoRequest struct {
	Title       string  `json:"title"       validate:"required,min=1,max=255"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	CategoryID  *uint   `json:"categoryId"  validate:"omitempty,gt=0"`
}

type updateTodoRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
	DueDate     *string `json:"dueDate"`
	CategoryID  *uint   `json:"categoryId"  validate:"omitempty,gt=0"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(value string) (*time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, true
		}
	}
	return nil, false
}

func (h *TodoHandler) Create(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	var req createTodoRequest
	if err := c.Bind(&req); err != nil {
		return apierr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	var due *time.Time
	if req.DueDate != nil {
		var ok bool
		if due, ok = parseDate(*req.DueDate); !ok {
			return apierr.BadRequest("dueDate must be a valid date")
		}
	}

	todo, err := h.Svc.Create(c.Request().Context(), identity.ID, service.CreateTodoParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     due,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, todo, "todo created successfully")
}

func (h *TodoHandler) List(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	f, err := todoFilterFromQuery(c)
	if err != nil {
		return err
	}

	page, err := h.Svc.List(c.Request().Context(), identity.ID, f)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, page, "todos fetched successfully")
}

func todoFilterFromQuery(c echo.Context) (repo.TodoFilter, error) {
	f := repo.TodoFilter{Page: 1, Limit: 10}

	if v := c.QueryParam("completed"); v != "" {
		b := v == "true"
		f.Completed = &b
	}
	if v := c.QueryParam("categoryId"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return f, apierr.BadRequest("invalid category id")
		}
		id := uint(n)
		f.CategoryID = &id
	}
	if v := c.QueryParam("dueBefore"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			return f, apierr.BadRequest("invalid dueBefore date")
		}
		f.DueBefore = t
	}
	if v := c.QueryParam("dueAfter"); v != "" {
		t, ok := parseDate(v)
		if !ok {
			return f, apierr.BadRequest("invalid dueAfter date")
		}
		f.DueAfter = t
	}
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apierr.BadRequest("invalid pagination values")
		}
		f.Page = n
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, apierr.BadRequest("invalid pagination values")
		}
		f.Limit = n
	}
	if f.Page < 1 || f.Limit < 1 {
		return f, apierr.BadRequest("invalid pagination values")
	}
	return f, nil
}

func (h *TodoHandler) Get(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "todo")
	if err != nil {
		return err
	}

	todo, err := h.Svc.Get(c.Request().Context(), id, identity.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, todo, "todo fetched successfully")
}

func (h *TodoHandler) Update(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "todo")
	if err != nil {
		return err
	}

	var req updateTodoRequest
	if err := c.Bind(&req); err != nil {
		return apierr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Title == nil && req.Description == nil && req.Completed == nil &&
		req.DueDate == nil && req.CategoryID == nil {
		return apierr.BadRequest("provide at least one field to update")
	}

	var due *time.Time
	if req.DueDate != nil {
		var ok bool
		if due, ok = parseDate(*req.DueDate); !ok {
			return apierr.BadRequest("dueDate must be a valid date")
		}
	}

	todo, err := h.Svc.Update(c.Request().Context(), id, identity.ID, service.UpdateTodoParams{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     due,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, todo, "todo updated successfully")
}

func (h *TodoHandler) Toggle(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "todo")
	if err != nil {
		return err
	}

	todo, err := h.Svc.Toggle(c.Request().Context(), id, identity.ID)
	if err != nil {
		return err
	}

	msg := "todo marked as incomplete"
	if todo.Completed {
		msg = "todo marked as completed"
	}
	return respond(c, http.StatusOK, todo, msg)
}

func (h *TodoHandler) Delete(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "todo")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id, identity.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "todo deleted successfully")
}
