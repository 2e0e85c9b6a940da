// Package client implements the API client and the cached todo collection
// that mediates all user-triggered state changes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Todo is the wire form of a todo as served by the API.
type Todo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateTodoParams is the create payload. Description may be nil.
type CreateTodoParams struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// UpdateTodoParams is a partial update; nil fields are omitted from the
// request entirely.
type UpdateTodoParams struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// APIError carries the server's error body alongside the HTTP status.
type APIError struct {
	Status   int
	Message  string
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, "; ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Client talks to the todo REST API over HTTP with a bearer session token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// SetToken installs the session credential used on authenticated calls.
func (c *Client) SetToken(token string) { c.token = token }

type sessionResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a session token and installs it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, http.StatusOK, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

// Register creates an account, then installs the returned session token.
func (c *Client) Register(ctx context.Context, email, password string) error {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{"email": email, "password": password}, http.StatusCreated, &resp); err != nil {
		return err
	}
	c.token = resp.Token
	return nil
}

func (c *Client) List(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := c.do(ctx, http.MethodGet, "/api/todos", nil, http.StatusOK, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) Create(ctx context.Context, params CreateTodoParams) (*Todo, error) {
	var todo Todo
	if err := c.do(ctx, http.MethodPost, "/api/todos", params, http.StatusCreated, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) Update(ctx context.Context, id string, params UpdateTodoParams) (*Todo, error) {
	var todo Todo
	if err := c.do(ctx, http.MethodPatch, "/api/todos/"+id, params, http.StatusOK, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) Delete(ctx context.Context, id string) (*Todo, error) {
	var todo Todo
	if err := c.do(ctx, http.MethodDelete, "/api/todos/"+id, nil, http.StatusOK, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var body struct {
		Error  string   `json:"error"`
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		apiErr.Messages = body.Errors
	}
	return apiErr
}
