// Package auth is the session-credential boundary. Components that need the
// caller's identity depend only on Resolver, never on how credentials are
// issued or stored.
package auth

import (
	"context"
	"errors"
)

// ErrInvalidSession indicates the presented credential did not resolve to a
// user, whether missing, malformed, expired, or forged.
var ErrInvalidSession = errors.New("invalid session")

// Identity is the resolved caller, read-only for the rest of the request.
type Identity struct {
	UserID string
	Email  string
}

// Resolver turns an opaque session credential into an Identity.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*Identity, error)
}
