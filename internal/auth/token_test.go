package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"todo-board/internal/domain"
)

func TestIssueAndResolve(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	user := &domain.User{ID: "user-1", Email: "a@example.com"}
	token, err := manager.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := manager.Resolve(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "user-1", identity.UserID)
	require.Equal(t, "a@example.com", identity.Email)
}

func TestResolveRejectsGarbage(t *testing.T) {
	manager := NewTokenManager("test-secret", time.Hour)

	for _, credential := range []string{"", "not-a-token", "a.b.c"} {
		_, err := manager.Resolve(context.Background(), credential)
		require.ErrorIs(t, err, ErrInvalidSession)
	}
}

func TestResolveRejectsExpired(t *testing.T) {
	manager := NewTokenManager("test-secret", -time.Minute)

	token, err := manager.Issue(&domain.User{ID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = manager.Resolve(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestResolveRejectsForeignSignature(t *testing.T) {
	issuer := NewTokenManager("secret-one", time.Hour)
	verifier := NewTokenManager("secret-two", time.Hour)

	token, err := issuer.Issue(&domain.User{ID: "user-1", Email: "a@example.com"})
	require.NoError(t, err)

	_, err = verifier.Resolve(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidSession)
}
