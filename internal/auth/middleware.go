// Package auth issues bearer tokens and resolves the requesting user from them.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/evcraddock/bloggu/internal/apperr"
	"github.com/evcraddock/bloggu/internal/user"
)

// UserLookup resolves a username to its currently stored record.
type UserLookup interface {
	GetByUsername(ctx context.Context, username string) (*user.User, error)
}

// Guard authenticates requests carrying an "Authorization: Bearer <token>" header.
type Guard struct {
	tokens *TokenService
	users  UserLookup
}

// NewGuard creates a guard.
func NewGuard(tokens *TokenService, users UserLookup) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Authenticate returns the stored user named by the request's bearer token.
// The user is loaded fresh, so username or group changes since issuance apply.
func (g *Guard) Authenticate(r *http.Request) (*user.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return nil, apperr.New(apperr.Unauthenticated, "Not authenticated")
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Not authenticated")
	}

	username, err := g.tokens.Validate(token)
	if err != nil {
		slog.DebugContext(r.Context(), "token rejected", "error", err)
		return nil, apperr.New(apperr.Unauthenticated, "Could not validate credentials")
	}

	u, err := g.users.GetByUsername(r.Context(), username)
	if errors.Is(err, user.ErrNotFound) {
		return nil, apperr.New(apperr.UserNotFound, "User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "loading user")
	}
	return u, nil
}

type contextKey struct{}

type identity struct {
	user *user.User
	err  error
}

// Identify authenticates every request and stores the outcome in its context.
// It never rejects a request; handlers call Requester to demand an identity.
func (g *Guard) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := g.Authenticate(r)
		ctx := context.WithValue(r.Context(), contextKey{}, identity{user: u, err: err})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithRequester returns a context carrying u as the authenticated user.
func WithRequester(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, contextKey{}, identity{user: u})
}

// Requester returns the authenticated user stored by Identify, or the reason there is none.
func Requester(ctx context.Context) (*user.User, error) {
	id, ok := ctx.Value(contextKey{}).(identity)
	if !ok {
		return nil, apperr.New(apperr.Unauthenticated, "Not authenticated")
	}
	if id.err != nil {
		return nil, id.err
	}
	if id.user == nil {
		return nil, apperr.New(apperr.Unauthenticated, "Not authenticated")
	}
	return id.user, nil
}
