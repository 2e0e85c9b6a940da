package service

import (
	"context"
	"errors"

	"todo-board/internal/domain"
	"todo-board/internal/repository"
)

// TodoService coordinates owner-scoped todo operations backed by the
// repository. Every operation takes the caller's resolved user id; the
// service never trusts an owner supplied any other way.
type TodoService interface {
	List(ctx context.Context, userID string) ([]domain.Todo, error)
	Create(ctx context.Context, userID, title string, description *string, completed bool) (*domain.Todo, error)
	Update(ctx context.Context, id, userID string, patch repository.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id, userID string) (*domain.Todo, error)
}

type todoService struct {
	todos repository.TodoRepository
}

func NewTodoService(todos repository.TodoRepository) TodoService {
	return &todoService{todos: todos}
}

func (s *todoService) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	return s.todos.ListByOwner(ctx, userID)
}

func (s *todoService) Create(ctx context.Context, userID, title string, description *string, completed bool) (*domain.Todo, error) {
	if title == "" {
		return nil, errors.New("title is required")
	}
	if userID == "" {
		return nil, errors.New("owner is required")
	}

	todo := &domain.Todo{
		Title:       title,
		Description: description,
		Completed:   completed,
		UserID:      userID,
	}

	if err := s.todos.Insert(ctx, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *todoService) Update(ctx context.Context, id, userID string, patch repository.TodoPatch) (*domain.Todo, error) {
	return s.todos.UpdateByOwnerAndID(ctx, id, userID, patch)
}

func (s *todoService) Delete(ctx context.Context, id, userID string) (*domain.Todo, error) {
	return s.todos.DeleteByOwnerAndID(ctx, id, userID)
}
