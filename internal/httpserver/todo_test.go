package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skvortsov/todoapp/internal/models"
	"github.com/skvortsov/todoapp/internal/service"
)

type todoPageResponse struct {
	Data struct {
		Todos      []models.Todo      `json:"todos"`
		Pagination service.Pagination `json:"pagination"`
	} `json:"data"`
}

func TestCreateTodo(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	cat := env.createCategory(t, userA.AccessToken, "Work")
	todo := env.createTodo(t, userA.AccessToken, map[string]any{
		"title":       "write report",
		"description": "quarterly numbers",
		"dueDate":     "2026-09-15",
		"categoryId":  cat.ID,
	})

	require.Equal(t, "write report", todo.Title)
	require.False(t, todo.Completed)
	require.Equal(t, userA.UserID, todo.UserID)
	require.NotNil(t, todo.CategoryID)
	require.Equal(t, cat.ID, *todo.CategoryID)
	require.NotNil(t, todo.DueDate)
}

func TestCreateTodoRequiresTitle(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	_, c := env.doJSONRequest(http.MethodPost, "/todo/create", map[string]any{"description": "no title"}, userA.AccessToken)
	ae := requireAPIError(t, env.authed(env.Todos.Create, c), http.StatusBadRequest)
	require.NotEmpty(t, ae.Fields)
	require.Equal(t, "title", ae.Fields[0].Field)
}

func TestCreateTodoInvalidDueDate(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	_, c := env.doJSONRequest(http.MethodPost, "/todo/create",
		map[string]any{"title": "bad date", "dueDate": "not-a-date"}, userA.AccessToken)
	requireAPIError(t, env.authed(env.Todos.Create, c), http.StatusBadRequest)
}

func TestCreateTodoForeignCategory(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")
	userB := env.registerUser(t, "user_b", "b@example.com")

	catB := env.createCategory(t, userB.AccessToken, "Private")

	_, c := env.doJSONRequest(http.MethodPost, "/todo/create",
		map[string]any{"title": "sneaky", "categoryId": catB.ID}, userA.AccessToken)
	requireAPIError(t, env.authed(env.Todos.Create, c), http.StatusBadRequest)
}

func TestTodoOwnershipMasking(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")
	userB := env.registerUser(t, "user_b", "b@example.com")

	todo := env.createTodo(t, userA.AccessToken, map[string]any{"title": "mine"})
	todoID := fmt.Sprint(todo.ID)

	_, cGet := env.doJSONRequest(http.MethodGet, "/todo/"+todoID, nil, userB.AccessToken)
	setID(cGet, "/todo/:id", todoID)
	foreign := requireAPIError(t, env.authed(env.Todos.Get, cGet), http.StatusNotFound)

	_, cAbsent := env.doJSONRequest(http.MethodGet, "/todo/9999", nil, userB.AccessToken)
	setID(cAbsent, "/todo/:id", "9999")
	absent := requireAPIError(t, env.authed(env.Todos.Get, cAbsent), http.StatusNotFound)
	require.Equal(t, foreign.Message, absent.Message)

	_, cUpdate := env.doJSONRequest(http.MethodPut, "/todo/"+todoID, map[string]any{"title": "stolen"}, userB.AccessToken)
	setID(cUpdate, "/todo/:id", todoID)
	requireAPIError(t, env.authed(env.Todos.Update, cUpdate), http.StatusNotFound)

	_, cToggle := env.doJSONRequest(http.MethodPatch, "/todo/"+todoID, nil, userB.AccessToken)
	setID(cToggle, "/todo/:id", todoID)
	requireAPIError(t, env.authed(env.Todos.Toggle, cToggle), http.StatusNotFound)

	_, cDelete := env.doJSONRequest(http.MethodDelete, "/todo/"+todoID, nil, userB.AccessToken)
	setID(cDelete, "/todo/:id", todoID)
	requireAPIError(t, env.authed(env.Todos.Delete, cDelete), http.StatusNotFound)

	// untouched for the owner
	rec, cOwner := env.doJSONRequest(http.MethodGet, "/todo/"+todoID, nil, userA.AccessToken)
	setID(cOwner, "/todo/:id", todoID)
	require.NoError(t, env.authed(env.Todos.Get, cOwner))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.Todo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "mine", resp.Data.Title)
	require.False(t, resp.Data.Completed)
}

func TestToggleTodoParity(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	todo := env.createTodo(t, userA.AccessToken, map[string]any{"title": "flip me"})
	todoID := fmt.Sprint(todo.ID)

	toggle := func() (models.Todo, string) {
		rec, c := env.doJSONRequest(http.MethodPatch, "/todo/"+todoID, nil, userA.AccessToken)
		setID(c, "/todo/:id", todoID)
		require.NoError(t, env.authed(env.Todos.Toggle, c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Data    models.Todo `json:"data"`
			Message string      `json:"message"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Data, resp.Message
	}

	first, firstMsg := toggle()
	require.True(t, first.Completed)
	require.Equal(t, "todo marked as completed", firstMsg)

	second, secondMsg := toggle()
	require.False(t, second.Completed)
	require.Equal(t, "todo marked as incomplete", secondMsg)
	require.Equal(t, todo.Completed, second.Completed)
}

func TestUpdateTodoPartial(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	todo := env.createTodo(t, userA.AccessToken, map[string]any{
		"title":       "original title",
		"description": "original description",
	})
	todoID := fmt.Sprint(todo.ID)

	// only completed changes
	rec, c := env.doJSONRequest(http.MethodPut, "/todo/"+todoID, map[string]any{"completed": true}, userA.AccessToken)
	setID(c, "/todo/:id", todoID)
	require.NoError(t, env.authed(env.Todos.Update, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.Todo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Data.Completed)
	require.Equal(t, "original title", resp.Data.Title)
	require.NotNil(t, resp.Data.Description)
	require.Equal(t, "original description", *resp.Data.Description)

	// only title changes
	rec2, c2 := env.doJSONRequest(http.MethodPut, "/todo/"+todoID, map[string]any{"title": "new title"}, userA.AccessToken)
	setID(c2, "/todo/:id", todoID)
	require.NoError(t, env.authed(env.Todos.Update, c2))

	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &resp))
	require.Equal(t, "new title", resp.Data.Title)
	require.True(t, resp.Data.Completed)

	// empty update is rejected
	_, cEmpty := env.doJSONRequest(http.MethodPut, "/todo/"+todoID, map[string]any{}, userA.AccessToken)
	setID(cEmpty, "/todo/:id", todoID)
	requireAPIError(t, env.authed(env.Todos.Update, cEmpty), http.StatusBadRequest)
}

func TestUpdateTodoForeignCategory(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")
	userB := env.registerUser(t, "user_b", "b@example.com")

	todo := env.createTodo(t, userA.AccessToken, map[string]any{"title": "mine"})
	catB := env.createCategory(t, userB.AccessToken, "Private")
	todoID := fmt.Sprint(todo.ID)

	_, c := env.doJSONRequest(http.MethodPut, "/todo/"+todoID, map[string]any{"categoryId": catB.ID}, userA.AccessToken)
	setID(c, "/todo/:id", todoID)
	requireAPIError(t, env.authed(env.Todos.Update, c), http.StatusNotFound)
}

func TestDeleteTodo(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	todo := env.createTodo(t, userA.AccessToken, map[string]any{"title": "done soon"})
	todoID := fmt.Sprint(todo.ID)

	rec, c := env.doJSONRequest(http.MethodDelete, "/todo/"+todoID, nil, userA.AccessToken)
	setID(c, "/todo/:id", todoID)
	require.NoError(t, env.authed(env.Todos.Delete, c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, cGone := env.doJSONRequest(http.MethodGet, "/todo/"+todoID, nil, userA.AccessToken)
	setID(cGone, "/todo/:id", todoID)
	requireAPIError(t, env.authed(env.Todos.Get, cGone), http.StatusNotFound)
}

func seedTodos(t *testing.T, env *testEnv, userID uint, n int) {
	t.Helper()
	base := time.Now().Add(-time.Duration(n+1) * time.Hour)
	for i := 1; i <= n; i++ {
		todo := models.Todo{
			Title:     fmt.Sprintf("todo %02d", i),
			UserID:    userID,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, env.DB.Create(&todo).Error)
	}
}

func TestListTodosPagination(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	seedTodos(t, env, userA.UserID, 25)

	rec, c := env.doJSONRequest(http.MethodGet, "/todo/all?page=2&limit=10", nil, userA.AccessToken)
	require.NoError(t, env.authed(env.Todos.List, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp todoPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Len(t, resp.Data.Todos, 10)
	require.Equal(t, int64(25), resp.Data.Pagination.Total)
	require.Equal(t, 2, resp.Data.Pagination.Page)
	require.Equal(t, 10, resp.Data.Pagination.Limit)
	require.Equal(t, int64(3), resp.Data.Pagination.TotalPages)

	// newest first: page 2 of 25 holds the 11th through 20th newest
	require.Equal(t, "todo 15", resp.Data.Todos[0].Title)
	require.Equal(t, "todo 06", resp.Data.Todos[9].Title)
}

func TestListTodosDefaults(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	seedTodos(t, env, userA.UserID, 12)

	rec, c := env.doJSONRequest(http.MethodGet, "/todo/all", nil, userA.AccessToken)
	require.NoError(t, env.authed(env.Todos.List, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp todoPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Todos, 10)
	require.Equal(t, 1, resp.Data.Pagination.Page)
	require.Equal(t, 10, resp.Data.Pagination.Limit)
	require.Equal(t, int64(12), resp.Data.Pagination.Total)
	require.Equal(t, "todo 12", resp.Data.Todos[0].Title)
}

func TestListTodosBadPagination(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	for _, query := range []string{"page=0", "limit=0", "page=-1", "page=abc", "limit=abc"} {
		_, c := env.doJSONRequest(http.MethodGet, "/todo/all?"+query, nil, userA.AccessToken)
		requireAPIError(t, env.authed(env.Todos.List, c), http.StatusBadRequest)
	}

	_, cDate := env.doJSONRequest(http.MethodGet, "/todo/all?dueBefore=garbage", nil, userA.AccessToken)
	requireAPIError(t, env.authed(env.Todos.List, cDate), http.StatusBadRequest)
}

func TestListTodosFilters(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")
	userB := env.registerUser(t, "user_b", "b@example.com")

	cat := env.createCategory(t, userA.AccessToken, "Work")

	env.createTodo(t, userA.AccessToken, map[string]any{"title": "early", "dueDate": "2026-09-01"})
	env.createTodo(t, userA.AccessToken, map[string]any{"title": "boundary", "dueDate": "2026-09-02"})
	env.createTodo(t, userA.AccessToken, map[string]any{"title": "late", "dueDate": "2026-09-03", "categoryId": cat.ID})
	env.createTodo(t, userB.AccessToken, map[string]any{"title": "other user", "dueDate": "2026-09-02"})

	list := func(query string) []models.Todo {
		rec, c := env.doJSONRequest(http.MethodGet, "/todo/all?"+query, nil, userA.AccessToken)
		require.NoError(t, env.authed(env.Todos.List, c))
		require.Equal(t, http.StatusOK, rec.Code)
		var resp todoPageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Data.Todos
	}

	// inclusive upper bound: "on or before"
	titles := func(todos []models.Todo) []string {
		out := make([]string, 0, len(todos))
		for _, td := range todos {
			out = append(out, td.Title)
		}
		return out
	}

	before := list("dueBefore=2026-09-02")
	require.ElementsMatch(t, []string{"early", "boundary"}, titles(before))

	// inclusive lower bound: "on or after"
	after := list("dueAfter=2026-09-02")
	require.ElementsMatch(t, []string{"boundary", "late"}, titles(after))

	both := list("dueAfter=2026-09-02&dueBefore=2026-09-02")
	require.ElementsMatch(t, []string{"boundary"}, titles(both))

	byCategory := list("categoryId=" + fmt.Sprint(cat.ID))
	require.ElementsMatch(t, []string{"late"}, titles(byCategory))

	// nothing completed yet
	require.Empty(t, list("completed=true"))
	require.Len(t, list("completed=false"), 3)
}

func TestListTodosCountAndPageAgree(t *testing.T) {
	env := newTestEnv(t)
	userA := env.registerUser(t, "user_a", "a@example.com")

	seedTodos(t, env, userA.UserID, 7)

	rec, c := env.doJSONRequest(http.MethodGet, "/todo/all?page=1&limit=5", nil, userA.AccessToken)
	require.NoError(t, env.authed(env.Todos.List, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp todoPageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Todos, 5)
	require.Equal(t, int64(7), resp.Data.Pagination.Total)
	require.Equal(t, int64(2), resp.Data.Pagination.TotalPages)
}
