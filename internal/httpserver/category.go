package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/middleware"
	"github.com/skvortsov/todoapp/internal/service"
)

type CategoryHandler struct {
	Svc *service.CategoryService
}

type createCategoryRequest struct {
	Name  string  `json:"name"  validate:"required,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,max=20"`
}

type updateCategoryRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=1,max=100"`
	Color *string `json:"color" validate:"omitempty,max=20"`
}

func pathID(c echo.Context, resource string) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, apierr.BadRequest("invalid " + resource + " id")
	}
	return uint(id), nil
}

func (h *CategoryHandler) Create(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return apierr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cat, err := h.Svc.Create(c.Request().Context(), identity.ID, req.Name, req.Color)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, cat, "category created successfully")
}

func (h *CategoryHandler) List(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	cats, err := h.Svc.List(c.Request().Context(), identity.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cats, "categories fetched successfully")
}

func (h *CategoryHandler) Get(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "category")
	if err != nil {
		return err
	}

	cat, err := h.Svc.Get(c.Request().Context(), id, identity.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cat, "category fetched successfully")
}

func (h *CategoryHandler) Update(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "category")
	if err != nil {
		return err
	}

	var req updateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return apierr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Name == nil && req.Color == nil {
		return apierr.BadRequest("provide at least one field to update")
	}

	cat, err := h.Svc.Update(c.Request().Context(), id, identity.ID, service.CategoryParams{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, cat, "category updated successfully")
}

func (h *CategoryHandler) Delete(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "category")
	if err != nil {
		return err
	}

	if err := h.Svc.Delete(c.Request().Context(), id, identity.ID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, nil, "category deleted successfully")
}
