package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-board/internal/domain"
	"todo-board/internal/repository"
)

const createTodosTable = `
CREATE TABLE IF NOT EXISTS todos (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	user_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_owner ON todos (user_id, created_at DESC);
`

const todoColumns = `id, title, description, completed, user_id, created_at, updated_at`

type TodoRepository struct {
	db *sql.DB
}

func NewTodoRepository(db *sql.DB) repository.TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTodosTable); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}

func (r *TodoRepository) ListByOwner(ctx context.Context, userID string) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+todoColumns+`
FROM todos
WHERE user_id = ?
ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []domain.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}

	return todos, rows.Err()
}

func (r *TodoRepository) Insert(ctx context.Context, todo *domain.Todo) error {
	now := time.Now().UTC()
	todo.ID = uuid.NewString()
	todo.CreatedAt = now
	todo.UpdatedAt = now

	if _, err := r.db.ExecContext(ctx, `
INSERT INTO todos (id, title, description, completed, user_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		todo.ID,
		todo.Title,
		nullString(todo.Description),
		todo.Completed,
		todo.UserID,
		todo.CreatedAt,
		todo.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

// UpdateByOwnerAndID applies only the provided patch fields in a single
// statement filtered by (id, user_id). updated_at is always refreshed, so an
// empty patch is a timestamp bump.
func (r *TodoRepository) UpdateByOwnerAndID(ctx context.Context, id, userID string, patch repository.TodoPatch) (*domain.Todo, error) {
	set := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Completed != nil {
		set = append(set, "completed = ?")
		args = append(args, *patch.Completed)
	}
	args = append(args, id, userID)

	query := fmt.Sprintf(`
UPDATE todos
SET %s
WHERE id = ? AND user_id = ?
RETURNING %s`, strings.Join(set, ", "), todoColumns)

	row := r.db.QueryRowContext(ctx, query, args...)
	todo, err := scanTodo(row)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// DeleteByOwnerAndID removes at most one row matching both id and owner and
// returns the deleted row, or repository.ErrNotFound if nothing matched.
func (r *TodoRepository) DeleteByOwnerAndID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	row := r.db.QueryRowContext(ctx, `
DELETE FROM todos
WHERE id = ? AND user_id = ?
RETURNING `+todoColumns,
		id,
		userID,
	)

	todo, err := scanTodo(row)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func scanTodo(scanner interface {
	Scan(dest ...any) error
}) (*domain.Todo, error) {
	var (
		todo        domain.Todo
		description sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	if err := scanner.Scan(
		&todo.ID,
		&todo.Title,
		&description,
		&todo.Completed,
		&todo.UserID,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan todo: %w", err)
	}

	if description.Valid {
		todo.Description = &description.String
	}
	todo.CreatedAt = createdAt.UTC()
	todo.UpdatedAt = updatedAt.UTC()

	return &todo, nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
