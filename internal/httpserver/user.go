package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/middleware"
	"github.com/skvortsov/todoapp/internal/service"
)

type UserHandler struct {
	Svc *service.AuthService
}

type registerRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=255"`
	Email    string  `json:"email"    validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	Country  *string `json:"country"  validate:"omitempty,min=2"`
	Age      *int    `json:"age"      validate:"omitempty,gte=13"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apierr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Svc.Register(c.Request().Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Country:  req.Country,
		Age:      req.Age,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, echo.Map{
		"user":         res.User,
		"accessToken":  res.Pair.AccessToken,
		"refreshToken": res.Pair.RefreshToken,
	}, "user created successfully")
}

// Login authenticates by username or email plus password.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apierr.BadRequest("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.Svc.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, echo.Map{
		"user":         res.User,
		"accessToken":  res.Pair.AccessToken,
		"refreshToken": res.Pair.RefreshToken,
	}, "user logged in successfully")
}

func (h *UserHandler) Logout(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}

	h.Svc.Logout(c.Request().Context(), identity.ID)
	return respond(c, http.StatusOK, nil, "user logged out successfully")
}

func (h *UserHandler) CurrentUser(c echo.Context) error {
	identity, err := middleware.IdentityFrom(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, identity, "current user fetched successfully")
}

// Refresh rotates the token pair. The bearer credential on this route
// is the refresh token, not an access token.
func (h *UserHandler) Refresh(c echo.Context) error {
	raw := middleware.BearerToken(c)
	if raw == "" {
		return apierr.Unauthorized("unauthorized request")
	}

	pair, err := h.Svc.Refresh(c.Request().Context(), raw)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, pair, "token refreshed successfully")
}
