package repository

import (
	"context"
	"errors"

	"todo-board/internal/domain"
)

// ErrNotFound is returned when an owner-scoped operation matches no row,
// either because the id does not exist or because it belongs to another
// user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("todo not found")

// TodoPatch carries a partial update; nil fields are left untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TodoRepository exposes owner-scoped persistence operations for Todo rows.
// Every mutation is a single conditional statement keyed by (id, user_id) so
// the ownership check and the mutation cannot race.
type TodoRepository interface {
	Init(ctx context.Context) error
	ListByOwner(ctx context.Context, userID string) ([]domain.Todo, error)
	Insert(ctx context.Context, todo *domain.Todo) error
	UpdateByOwnerAndID(ctx context.Context, id, userID string, patch TodoPatch) (*domain.Todo, error)
	DeleteByOwnerAndID(ctx context.Context, id, userID string) (*domain.Todo, error)
}
