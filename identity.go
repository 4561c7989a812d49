package main

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// This file defines the identity boundary. Authentication itself is external
// to this service: clients present an opaque bearer token that is treated as
// the stable user identifier, the way an API key would be. The token is bound
// to the request context by authMiddleware and read back through the
// IdentityProvider interface, so tests can substitute a fixed identity.

// ErrNotAuthenticated is returned by identity-scoped operations when no user
// identifier is bound to the context.
var ErrNotAuthenticated = errors.New("no authenticated user")

// IdentityProvider yields the stable user identifier for the current request.
type IdentityProvider interface {
	UserID(ctx context.Context) (string, error)
}

type contextKey string

const userIDKey contextKey = "userID"

// contextIdentity is the production IdentityProvider: it reads the user id
// that authMiddleware stored on the request context.
type contextIdentity struct{}

// NewContextIdentity returns an IdentityProvider backed by request context.
func NewContextIdentity() IdentityProvider {
	return contextIdentity{}
}

func (contextIdentity) UserID(ctx context.Context) (string, error) {
	uid, ok := ctx.Value(userIDKey).(string)
	if !ok || uid == "" {
		return "", ErrNotAuthenticated
	}
	return uid, nil
}

// withUserID returns a child context carrying the given user id.
func withUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// bearerToken extracts the opaque token from an Authorization header.
// Returns "" when the header is missing or not a bearer scheme.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(auth[len(prefix):])
}
