package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-board/internal/auth"
	"todo-board/internal/domain"
	"todo-board/internal/repository"
	"todo-board/internal/service"
)

const identityKey = "identity"

// Handler wires HTTP routes to domain services.
type Handler struct {
	todos    service.TodoService
	users    service.UserService
	sessions *auth.TokenManager
	origins  []string
	log      *logrus.Logger
}

func NewHandler(todos service.TodoService, users service.UserService, sessions *auth.TokenManager, origins []string, log *logrus.Logger) *Handler {
	return &Handler{
		todos:    todos,
		users:    users,
		sessions: sessions,
		origins:  origins,
		log:      log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = h.origins
	corsCfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsCfg.AllowCredentials = true
	router.Use(cors.New(corsCfg))

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)

		todos := api.Group("/todos")
		todos.Use(authRequired(h.sessions))
		{
			todos.GET("", h.listTodos)
			todos.POST("", h.createTodo)
			todos.PATCH("/:id", h.updateTodo)
			todos.DELETE("/:id", h.deleteTodo)
		}
	}
}

// authRequired resolves the session credential before any handler logic
// runs. The gate depends only on auth.Resolver, not on how sessions are
// issued.
func authRequired(resolver auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		credential := bearerToken(c)
		if credential == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), credential)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	if cookie, err := c.Cookie("session"); err == nil {
		return cookie
	}
	return ""
}

func identityFrom(c *gin.Context) (*auth.Identity, bool) {
	val, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := val.(*auth.Identity)
	return identity, ok
}

func (h *Handler) listTodos(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	todos, err := h.todos.List(c.Request.Context(), identity.UserID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", identity.UserID).Error("list todos failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch todos"})
		return
	}

	resp := make([]TodoResponse, len(todos))
	for i := range todos {
		resp[i] = todoToResponse(todos[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createTodo(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	var req createTodoRequest
	if msgs := decodeStrict(c.Request.Body, &req); msgs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": msgs})
		return
	}
	if msgs := req.validate(); len(msgs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": msgs})
		return
	}

	completed := false
	if req.Completed != nil {
		completed = *req.Completed
	}

	todo, err := h.todos.Create(c.Request.Context(), identity.UserID, *req.Title, req.Description, completed)
	if err != nil {
		h.log.WithError(err).WithField("user_id", identity.UserID).Error("create todo failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create todo"})
		return
	}

	c.JSON(http.StatusCreated, todoToResponse(*todo))
}

func (h *Handler) updateTodo(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	id := c.Param("id")

	var req updateTodoRequest
	if msgs := decodeStrict(c.Request.Body, &req); msgs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": msgs})
		return
	}
	if msgs := req.validate(); len(msgs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": msgs})
		return
	}

	todo, err := h.todos.Update(c.Request.Context(), id, identity.UserID, repository.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		h.log.WithError(err).WithFields(logrus.Fields{"user_id": identity.UserID, "todo_id": id}).Error("update todo failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update todo"})
		return
	}

	c.JSON(http.StatusOK, todoToResponse(*todo))
}

func (h *Handler) deleteTodo(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	id := c.Param("id")

	todo, err := h.todos.Delete(c.Request.Context(), id, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
			return
		}
		h.log.WithError(err).WithFields(logrus.Fields{"user_id": identity.UserID, "todo_id": id}).Error("delete todo failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete todo"})
		return
	}

	c.JSON(http.StatusOK, todoToResponse(*todo))
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		h.log.WithError(err).Error("issue session token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{Token: token, User: userToResponse(user)})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.log.WithError(err).Error("authenticate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	token, err := h.sessions.Issue(user)
	if err != nil {
		h.log.WithError(err).Error("issue session token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Token: token, User: userToResponse(user)})
}

// TodoResponse is the wire form of a todo. Description stays a pointer so an
// unset description serializes as null, matching the nullable column.
type TodoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type SessionResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func todoToResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Completed:   todo.Completed,
		UserID:      todo.UserID,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
