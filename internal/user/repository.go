package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/evcraddock/bloggu/internal/db"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when a username is already in use.
	ErrUsernameTaken = errors.New("username already taken")
)

const userColumns = "id, username, group_name, password_hash, created_at"

// Repository provides persistence for users.
type Repository struct {
	db *db.DB
}

// NewRepository creates a user repository.
func NewRepository(d *db.DB) *Repository {
	return &Repository{db: d}
}

// Create stores a new user with an already hashed password.
func (r *Repository) Create(ctx context.Context, username, group, passwordHash string) (*User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO users (username, group_name, password_hash, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		username, group, passwordHash, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("creating user %q: %w", username, ErrUsernameTaken)
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns the user with the given ID.
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// GetByUsername returns the user with the given username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// List returns all users ordered by ID.
func (r *Repository) List(ctx context.Context) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.WarnContext(ctx, "closing rows", "error", cerr)
		}
	}()

	users := make([]*User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// Update saves the username and group of u.
func (r *Repository) Update(ctx context.Context, u *User) (*User, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE users SET username = $1, group_name = $2 WHERE id = $3",
		u.Username, u.Group, u.ID,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("renaming user %d to %q: %w", u.ID, u.Username, ErrUsernameTaken)
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("user %d: %w", u.ID, ErrNotFound)
	}

	return r.GetByID(ctx, u.ID)
}

// Delete removes a user and, through the foreign keys, their comments.
// It reports whether a row was deleted.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("deleting user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking affected rows: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*User, error) {
	var u User
	if err := s.Scan(&u.ID, &u.Username, &u.Group, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
