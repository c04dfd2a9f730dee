package comment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/evcraddock/bloggu/internal/db"
)

var (
	// ErrNotFound is returned when no comment matches the lookup.
	ErrNotFound = errors.New("comment not found")
	// ErrNotOwner is returned when a mutation targets another user's comment.
	ErrNotOwner = errors.New("comment belongs to another user")
	// ErrHistoryNotFound is returned when no history entry matches the lookup.
	ErrHistoryNotFound = errors.New("comment history not found")
)

const (
	commentColumns = "c.id, c.user_id, c.content, c.created_at, c.updated_at"
	historyColumns = "h.id, h.comment_id, h.timestamp, h.old_value, h.new_value"

	commentsWithOwner  = "FROM comments c JOIN users u ON u.id = c.user_id"
	historiesWithOwner = "FROM comment_histories h JOIN comments c ON c.id = h.comment_id JOIN users u ON u.id = c.user_id"
)

// groupScope restricts a query to rows whose comment owner is in the group bound to $n.
func groupScope(n int) string {
	return fmt.Sprintf("u.group_name = $%d", n)
}

// Repository provides persistence for comments and their history.
type Repository struct {
	db *db.DB
}

// NewRepository creates a comment repository.
func NewRepository(d *db.DB) *Repository {
	return &Repository{db: d}
}

// Create stores a new comment owned by ownerID.
func (r *Repository) Create(ctx context.Context, ownerID int64, content string, at time.Time) (*Comment, error) {
	if content == "" {
		return nil, fmt.Errorf("comment content is required")
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO comments (user_id, content, created_at) VALUES ($1, $2, $3) RETURNING id",
		ownerID, content, at.UTC(),
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("inserting comment: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID returns a comment regardless of who is asking.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+commentColumns+" FROM comments c WHERE c.id = $1", id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying comment: %w", err)
	}
	return c, nil
}

// ListByGroup returns every comment whose owner belongs to group, oldest first.
func (r *Repository) ListByGroup(ctx context.Context, group string) ([]*Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+commentColumns+" "+commentsWithOwner+" WHERE "+groupScope(1)+" ORDER BY c.id",
		group,
	)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return collect(rows, scanComment, "comment")
}

// GetByIDInGroup returns the comment only if its owner belongs to group.
func (r *Repository) GetByIDInGroup(ctx context.Context, id int64, group string) (*Comment, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+commentColumns+" "+commentsWithOwner+" WHERE c.id = $1 AND "+groupScope(2),
		id, group,
	)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying comment: %w", err)
	}
	return c, nil
}

// UpdateContent replaces the content of a comment owned by ownerID and appends
// the matching history entry. Both writes commit together or not at all.
func (r *Repository) UpdateContent(ctx context.Context, id, ownerID int64, content string, at time.Time) (*Comment, *History, error) {
	if content == "" {
		return nil, nil, fmt.Errorf("comment content is required")
	}
	at = at.UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning update: %w", err)
	}
	defer db.Rollback(tx)

	current, err := r.lockComment(ctx, tx, id)
	if err != nil {
		return nil, nil, err
	}
	if !current.OwnedBy(ownerID) {
		return nil, nil, fmt.Errorf("updating comment %d: %w", id, ErrNotOwner)
	}

	var historyID int64
	if err := tx.QueryRowContext(ctx,
		"INSERT INTO comment_histories (comment_id, timestamp, old_value, new_value) VALUES ($1, $2, $3, $4) RETURNING id",
		id, at, current.Content, content,
	).Scan(&historyID); err != nil {
		return nil, nil, fmt.Errorf("inserting history: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE comments SET content = $1, updated_at = $2 WHERE id = $3",
		content, at, id,
	); err != nil {
		return nil, nil, fmt.Errorf("updating comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing update: %w", err)
	}

	updated, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	h := &History{
		ID:        historyID,
		CommentID: id,
		Timestamp: at,
		OldValue:  current.Content,
		NewValue:  content,
	}
	return updated, h, nil
}

// Delete removes a comment owned by ownerID, cascading its history.
// It returns false without error when the comment does not exist.
func (r *Repository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer db.Rollback(tx)

	current, err := r.lockComment(ctx, tx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !current.OwnedBy(ownerID) {
		return false, fmt.Errorf("deleting comment %d: %w", id, ErrNotOwner)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("deleting comment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return n > 0, nil
}

// lockComment reads a comment inside tx, holding its row lock until tx ends.
func (r *Repository) lockComment(ctx context.Context, tx *sql.Tx, id int64) (*Comment, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+commentColumns+" FROM comments c WHERE c.id = $1"+r.db.LockForUpdate(), id,
	)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading comment: %w", err)
	}
	return c, nil
}

// ListHistoryByGroup returns every history entry whose comment owner belongs to group.
func (r *Repository) ListHistoryByGroup(ctx context.Context, group string) ([]*History, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+historyColumns+" "+historiesWithOwner+" WHERE "+groupScope(1)+" ORDER BY h.id",
		group,
	)
	if err != nil {
		return nil, fmt.Errorf("listing histories: %w", err)
	}
	return collect(rows, scanHistory, "history")
}

// ListHistoryForCommentInGroup returns the history of one comment, oldest first,
// if the comment's owner belongs to group.
func (r *Repository) ListHistoryForCommentInGroup(ctx context.Context, commentID int64, group string) ([]*History, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+historyColumns+" "+historiesWithOwner+" WHERE h.comment_id = $1 AND "+groupScope(2)+" ORDER BY h.id",
		commentID, group,
	)
	if err != nil {
		return nil, fmt.Errorf("listing histories: %w", err)
	}
	return collect(rows, scanHistory, "history")
}

// GetHistoryByIDInGroup returns a history entry only if its comment's owner belongs to group.
func (r *Repository) GetHistoryByIDInGroup(ctx context.Context, id int64, group string) (*History, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+historyColumns+" "+historiesWithOwner+" WHERE h.id = $1 AND "+groupScope(2),
		id, group,
	)
	h, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("history %d: %w", id, ErrHistoryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	return h, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(s scanner) (*Comment, error) {
	var c Comment
	var updated sql.NullTime
	if err := s.Scan(&c.ID, &c.UserID, &c.Content, &c.CreatedAt, &updated); err != nil {
		return nil, err
	}
	if updated.Valid {
		t := updated.Time
		c.UpdatedAt = &t
	}
	return &c, nil
}

func scanHistory(s scanner) (*History, error) {
	var h History
	if err := s.Scan(&h.ID, &h.CommentID, &h.Timestamp, &h.OldValue, &h.NewValue); err != nil {
		return nil, err
	}
	return &h, nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, scan func(scanner) (*T, error), what string) (items []*T, err error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	items = make([]*T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", what, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s rows: %w", what, err)
	}
	return items, nil
}
