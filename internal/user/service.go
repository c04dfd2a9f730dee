package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/bloggu/internal/apperr"
)

const invalidCredentialsMsg = "Incorrect username or password"

// TokenIssuer issues a bearer token for a username.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// LoginThrottle limits repeated login failures per key.
type LoginThrottle interface {
	Blocked(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

// Service implements signup, login and self-service profile operations.
type Service struct {
	repo      *Repository
	tokens    TokenIssuer
	throttle  LoginThrottle
	cost      int
	dummyHash string
}

type clientAddrKey struct{}

// WithClientAddr records the caller's network address. Login failures are
// counted per username and address, so other clients cannot lock an account out.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, clientAddrKey{}, addr)
}

// throttleKey returns the failure counter key for a login attempt.
func throttleKey(ctx context.Context, username string) string {
	if addr, _ := ctx.Value(clientAddrKey{}).(string); addr != "" {
		return username + "@" + addr
	}
	return username
}

// Option configures a Service.
type Option func(*Service)

// WithBcryptCost sets the bcrypt cost used for new password hashes.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// WithThrottle enables login failure throttling.
func WithThrottle(t LoginThrottle) Option {
	return func(s *Service) { s.throttle = t }
}

// NewService creates a user service.
func NewService(repo *Repository, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	// Unknown usernames are checked against this hash so both login failures cost the same.
	if h, err := HashPassword("bloggu-unknown-user", s.cost); err == nil {
		s.dummyHash = h
	}
	return s
}

// Signup creates an account, storing only the password hash.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	username := strings.TrimSpace(req.Username)
	group := strings.TrimSpace(req.Group)
	if username == "" {
		return nil, apperr.New(apperr.Invalid, "username is required")
	}
	if group == "" {
		return nil, apperr.New(apperr.Invalid, "group is required")
	}
	if req.Password == "" {
		return nil, apperr.New(apperr.Invalid, "password is required")
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, apperr.New(apperr.Conflict, "Username already taken")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, apperr.Wrap(err, "checking username")
	}

	hash, err := HashPassword(req.Password, s.cost)
	if err != nil {
		if isPasswordTooLong(err) {
			return nil, apperr.New(apperr.Invalid, "password must be at most 72 bytes")
		}
		return nil, apperr.Wrap(err, "hashing password")
	}

	u, err := s.repo.Create(ctx, username, group, hash)
	if errors.Is(err, ErrUsernameTaken) {
		return nil, apperr.New(apperr.Conflict, "Username already taken")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "creating user")
	}

	slog.InfoContext(ctx, "user signed up", "user_id", u.ID, "username", u.Username, "group", u.Group)
	return u, nil
}

// Login verifies credentials and returns a bearer token.
// Unknown usernames and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	key := throttleKey(ctx, username)
	if s.throttle != nil {
		blocked, err := s.throttle.Blocked(ctx, key)
		if err != nil {
			return "", apperr.Wrap(err, "checking login throttle")
		}
		if blocked {
			slog.WarnContext(ctx, "login throttled", "username", username, "key", key)
			return "", apperr.New(apperr.RateLimited, "Too many failed login attempts, try again later")
		}
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", apperr.Wrap(err, "loading user")
	}

	ok := false
	if u != nil {
		ok = CheckPassword(u.PasswordHash, password)
	} else if s.dummyHash != "" {
		CheckPassword(s.dummyHash, password)
	}

	if !ok {
		slog.WarnContext(ctx, "login failed", "username", username)
		if s.throttle != nil {
			if err := s.throttle.RecordFailure(ctx, key); err != nil {
				slog.ErrorContext(ctx, "recording login failure", "error", err)
			}
		}
		return "", apperr.New(apperr.InvalidCredentials, invalidCredentialsMsg)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, key); err != nil {
			slog.ErrorContext(ctx, "resetting login throttle", "error", err)
		}
	}

	token, err := s.tokens.Issue(u.Username)
	if err != nil {
		return "", apperr.Wrap(err, "issuing token")
	}
	return token, nil
}

// UpdateSelf changes the requester's own username and/or group.
func (s *Service) UpdateSelf(ctx context.Context, requester *User, req UpdateRequest) (*User, error) {
	updated := *requester
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if name == "" {
			return nil, apperr.New(apperr.Invalid, "username cannot be empty")
		}
		updated.Username = name
	}
	if req.Group != nil {
		group := strings.TrimSpace(*req.Group)
		if group == "" {
			return nil, apperr.New(apperr.Invalid, "group cannot be empty")
		}
		updated.Group = group
	}

	u, err := s.repo.Update(ctx, &updated)
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return nil, apperr.New(apperr.Conflict, "Username already taken")
	case errors.Is(err, ErrNotFound):
		return nil, apperr.New(apperr.UserNotFound, "User not found")
	case err != nil:
		return nil, apperr.Wrap(err, "updating user")
	}

	slog.InfoContext(ctx, "user updated", "user_id", u.ID, "username", u.Username, "group", u.Group)
	return u, nil
}

// DeleteSelf removes the requester's account and reports whether it existed.
func (s *Service) DeleteSelf(ctx context.Context, requester *User) (bool, error) {
	deleted, err := s.repo.Delete(ctx, requester.ID)
	if err != nil {
		return false, apperr.Wrap(err, "deleting user")
	}
	if deleted {
		slog.InfoContext(ctx, "user deleted", "user_id", requester.ID)
	}
	return deleted, nil
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(err, "listing users")
	}
	return users, nil
}

// Get returns the user with the given ID.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, apperr.New(apperr.NotFound, "User not found")
	}
	if err != nil {
		return nil, apperr.Wrap(err, "loading user")
	}
	return u, nil
}

// GetByUsername returns the currently stored record for username.
// It returns ErrNotFound, unclassified, so callers choose the error kind.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.GetByUsername(ctx, username)
}
