package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"todo-board/internal/domain"
)

func TestUserCreateAndGet(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	user := &domain.User{Email: "a@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	byEmail, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "a@example.com", byID.Email)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	require.ErrorContains(t, err, "not found")
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Init(ctx))

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "hash"}))
	err := repo.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "other"})
	require.ErrorContains(t, err, "already exists")
}
