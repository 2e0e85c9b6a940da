package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-board/internal/auth"
	apphttp "todo-board/internal/http"
	"todo-board/internal/repository/sqlite"
	"todo-board/internal/service"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "todo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	todoRepo := sqlite.NewTodoRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	require.NoError(t, todoRepo.Init(t.Context()))
	require.NoError(t, userRepo.Init(t.Context()))

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sessions := auth.NewTokenManager("test-secret", time.Hour)
	handler := apphttp.NewHandler(
		service.NewTodoService(todoRepo),
		service.NewUserService(userRepo),
		sessions,
		[]string{"http://localhost:3000"},
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, router *gin.Engine, email string) (token, userID string) {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp apphttp.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token, resp.User.ID
}

func createTodo(t *testing.T, router *gin.Engine, token, title string) apphttp.TodoResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/todos", token, map[string]any{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var todo apphttp.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo))
	return todo
}

func listTodos(t *testing.T, router *gin.Engine, token string) []apphttp.TodoResponse {
	t.Helper()

	w := doJSON(t, router, http.MethodGet, "/api/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var todos []apphttp.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todos))
	return todos
}

func TestTodosRequireSession(t *testing.T) {
	router := setupRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/todos"},
		{http.MethodPost, "/api/todos"},
		{http.MethodPatch, "/api/todos/some-id"},
		{http.MethodDelete, "/api/todos/some-id"},
	} {
		w := doJSON(t, router, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}

	// a forged token is rejected the same way
	w := doJSON(t, router, http.MethodGet, "/api/todos", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateTodoDefaultsAndOwner(t *testing.T) {
	router := setupRouter(t)
	token, userID := signup(t, router, "owner@example.com")

	todo := createTodo(t, router, token, "Buy milk")

	assert.NotEmpty(t, todo.ID)
	assert.Equal(t, "Buy milk", todo.Title)
	assert.False(t, todo.Completed)
	assert.Nil(t, todo.Description)
	assert.Equal(t, userID, todo.UserID)
	assert.False(t, todo.UpdatedAt.Before(todo.CreatedAt))
}

func TestCreateTodoExplicitCompleted(t *testing.T) {
	router := setupRouter(t)
	token, _ := signup(t, router, "owner@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/todos", token, map[string]any{
		"title":       "Pre-done",
		"description": "already handled",
		"completed":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var todo apphttp.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo))
	assert.True(t, todo.Completed)
	require.NotNil(t, todo.Description)
	assert.Equal(t, "already handled", *todo.Description)
}

func TestCreateTodoValidation(t *testing.T) {
	router := setupRouter(t)
	token, _ := signup(t, router, "owner@example.com")

	type errorsBody struct {
		Errors []string `json:"errors"`
	}

	t.Run("missing title", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/todos", token, map[string]any{"description": "no title"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body errorsBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Contains(t, body.Errors, "Title is required")
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/todos", token, map[string]any{
			"title":  "ok",
			"userId": "someone-else",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		var body errorsBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Errors, 1)
		assert.Contains(t, body.Errors[0], "userId")
	})

	t.Run("wrong type", func(t *testing.T) {
		w := doJSON(t, router, http.MethodPost, "/api/todos", token, map[string]any{
			"title":     "ok",
			"completed": "yes",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	// nothing was persisted along the way
	assert.Empty(t, listTodos(t, router, token))
}

func TestOwnershipIsolation(t *testing.T) {
	router := setupRouter(t)
	tokenA, _ := signup(t, router, "alice@example.com")
	tokenB, _ := signup(t, router, "bob@example.com")

	todo := createTodo(t, router, tokenA, "Alice's secret")

	assert.Empty(t, listTodos(t, router, tokenB))

	w := doJSON(t, router, http.MethodPatch, "/api/todos/"+todo.ID, tokenB, map[string]any{"title": "hijacked"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/todos/"+todo.ID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Alice's todo survived untouched
	todos := listTodos(t, router, tokenA)
	require.Len(t, todos, 1)
	assert.Equal(t, "Alice's secret", todos[0].Title)
}

func TestUpdateTodo(t *testing.T) {
	router := setupRouter(t)
	token, _ := signup(t, router, "owner@example.com")

	todo := createTodo(t, router, token, "toggle me")

	w := doJSON(t, router, http.MethodPatch, "/api/todos/"+todo.ID, token, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated apphttp.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "toggle me", updated.Title)
}

func TestUpdateTodoEmptyPayload(t *testing.T) {
	router := setupRouter(t)
	token, _ := signup(t, router, "owner@example.com")

	todo := createTodo(t, router, token, "untouched")

	time.Sleep(10 * time.Millisecond)
	w := doJSON(t, router, http.MethodPatch, "/api/todos/"+todo.ID, token, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated apphttp.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "untouched", updated.Title)
	assert.False(t, updated.Completed)
	assert.True(t, updated.UpdatedAt.After(todo.UpdatedAt))
}

func TestDeleteTodo(t *testing.T) {
	router := setupRouter(t)
	token, _ := signup(t, router, "owner@example.com")

	todo := createTodo(t, router, token, "doomed")

	w := doJSON(t, router, http.MethodDelete, "/api/todos/"+todo.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var deleted apphttp.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal(t, todo.ID, deleted.ID)

	// deleting again is a 404 both times, never a 500
	w = doJSON(t, router, http.MethodDelete, "/api/todos/"+todo.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, router, http.MethodDelete, "/api/todos/"+todo.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrdering(t *testing.T) {
	router := setupRouter(t)
	token, _ := signup(t, router, "owner@example.com")

	for i := 1; i <= 3; i++ {
		createTodo(t, router, token, fmt.Sprintf("todo %d", i))
		time.Sleep(5 * time.Millisecond)
	}

	todos := listTodos(t, router, token)
	require.Len(t, todos, 3)
	assert.Equal(t, "todo 3", todos[0].Title)
	assert.Equal(t, "todo 2", todos[1].Title)
	assert.Equal(t, "todo 1", todos[2].Title)
}

func TestRoundTrip(t *testing.T) {
	router := setupRouter(t)
	token, _ := signup(t, router, "owner@example.com")

	created := createTodo(t, router, token, "Buy milk")

	todos := listTodos(t, router, token)
	require.Len(t, todos, 1)
	assert.Equal(t, created.ID, todos[0].ID)
	assert.Equal(t, "Buy milk", todos[0].Title)
	assert.False(t, todos[0].Completed)
	assert.False(t, todos[0].UpdatedAt.Before(todos[0].CreatedAt))
}

func TestLogin(t *testing.T) {
	router := setupRouter(t)
	signup(t, router, "owner@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp apphttp.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "owner@example.com", resp.User.Email)

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "owner@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := setupRouter(t)
	signup(t, router, "owner@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "owner@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
