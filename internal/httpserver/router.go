package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	mw "github.com/skvortsov/todoapp/internal/middleware"
)

type Deps struct {
	Logger     *slog.Logger
	Users      *UserHandler
	Categories *CategoryHandler
	Todos      *TodoHandler
	Auth       *mw.Auth
	CORSOrigin string
}

func Register(e *echo.Echo, d *Deps) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler()

	e.Use(mw.RequestLogger(d.Logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{d.CORSOrigin},
		AllowCredentials: true,
	}))

	e.GET("/", func(c echo.Context) error {
		return respond(c, http.StatusOK, nil, "api is working fine")
	})
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	users := e.Group("/users")
	users.POST("/register", d.Users.Register)
	users.POST("/login", d.Users.Login)
	users.GET("/refresh-token", d.Users.Refresh)
	users.POST("/logout", d.Users.Logout, d.Auth.RequireAuth)
	users.GET("/current-user", d.Users.CurrentUser, d.Auth.RequireAuth)

	category := e.Group("/category", d.Auth.RequireAuth)
	category.POST("/create", d.Categories.Create)
	category.GET("/all", d.Categories.List)
	category.GET("/:id", d.Categories.Get)
	category.PUT("/:id", d.Categories.Update)
	category.DELETE("/:id", d.Categories.Delete)

	todo := e.Group("/todo", d.Auth.RequireAuth)
	todo.POST("/create", d.Todos.Create)
	todo.GET("/all", d.Todos.List)
	todo.GET("/:id", d.Todos.Get)
	todo.PUT("/:id", d.Todos.Update)
	todo.DELETE("/:id", d.Todos.Delete)
	todo.PATCH("/:id", d.Todos.Toggle)
}
