package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skvortsov/todoapp/internal/apierr"
	"github.com/skvortsov/todoapp/internal/middleware"
	"github.com/skvortsov/todoapp/internal/models"
	"github.com/skvortsov/todoapp/internal/repo"
	"github.com/skvortsov/todoapp/internal/service"
)

type testEnv struct {
	T  *testing.T
	E  *echo.Echo
	DB *gorm.DB

	Users      *UserHandler
	Categories *CategoryHandler
	Todos      *TodoHandler
	Auth       *middleware.Auth

	AccessSecret  []byte
	RefreshSecret []byte
}

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Todo{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	db := initTestDB(t)
	r := repo.NewGormRepo(db)

	accessSecret := []byte("test-access-secret")
	refreshSecret := []byte("test-refresh-secret")

	authSvc := &service.AuthService{
		Repo:          r,
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}

	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler()

	return &testEnv{
		T:             t,
		E:             e,
		DB:            db,
		Users:         &UserHandler{Svc: authSvc},
		Categories:    &CategoryHandler{Svc: &service.CategoryService{Repo: r}},
		Todos:         &TodoHandler{Svc: &service.TodoService{Repo: r}},
		Auth:          middleware.NewAuth(r, accessSecret),
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
	}
}

func (env *testEnv) doJSONRequest(method, path string, body any, token string) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// authed runs a handler behind the auth middleware, the way the router
// wires protected routes.
func (env *testEnv) authed(h echo.HandlerFunc, c echo.Context) error {
	return env.Auth.RequireAuth(h)(c)
}

type registered struct {
	UserID       uint
	AccessToken  string
	RefreshToken string
}

func (env *testEnv) registerUser(t *testing.T, username, email string) registered {
	t.Helper()
	payload := map[string]any{
		"username": username,
		"email":    email,
		"password": "password123",
	}
	rec, c := env.doJSONRequest(http.MethodPost, "/users/register", payload, "")
	require.NoError(t, env.Users.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data struct {
			User         models.User `json:"user"`
			AccessToken  string      `json:"accessToken"`
			RefreshToken string      `json:"refreshToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	require.NotEmpty(t, resp.Data.RefreshToken)

	return registered{
		UserID:       resp.Data.User.ID,
		AccessToken:  resp.Data.AccessToken,
		RefreshToken: resp.Data.RefreshToken,
	}
}

func (env *testEnv) createCategory(t *testing.T, token, name string) models.Category {
	t.Helper()
	rec, c := env.doJSONRequest(http.MethodPost, "/category/create", map[string]any{"name": name}, token)
	require.NoError(t, env.authed(env.Categories.Create, c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data models.Category `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func (env *testEnv) createTodo(t *testing.T, token string, body map[string]any) models.Todo {
	t.Helper()
	rec, c := env.doJSONRequest(http.MethodPost, "/todo/create", body, token)
	require.NoError(t, env.authed(env.Todos.Create, c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data models.Todo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data
}

func setID(c echo.Context, path, id string) {
	c.SetPath(path)
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func requireAPIError(t *testing.T, err error, status int) *apierr.Error {
	t.Helper()
	require.Error(t, err)
	ae, ok := err.(*apierr.Error)
	require.True(t, ok, "expected *apierr.Error, got %T", err)
	require.Equal(t, status, ae.Status)
	return ae
}
