package comment

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/evcraddock/bloggu/internal/apperr"
	"github.com/evcraddock/bloggu/internal/user"
)

// Service applies the comment access rules on behalf of a requesting user.
// Reads are scoped to the requester's group; mutations to the comment's owner.
type Service struct {
	repo *Repository
	now  func() time.Time
}

// NewService creates a comment service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func validContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.New(apperr.Invalid, "content is required")
	}
	return nil
}

// Create stores a comment owned by the requester.
func (s *Service) Create(ctx context.Context, requester *user.User, content string) (*Comment, error) {
	if err := validContent(content); err != nil {
		return nil, err
	}

	c, err := s.repo.Create(ctx, requester.ID, content, s.now())
	if err != nil {
		return nil, apperr.Wrap(err, "creating comment")
	}

	slog.InfoContext(ctx, "comment created", "comment_id", c.ID, "user_id", requester.ID)
	return c, nil
}

// Update replaces the content of the requester's own comment and records the change.
func (s *Service) Update(ctx context.Context, requester *user.User, id int64, content string) (*Comment, error) {
	if err := validContent(content); err != nil {
		return nil, err
	}

	c, h, err := s.repo.UpdateContent(ctx, id, requester.ID, content, s.now())
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, apperr.New(apperr.NotFound, "Comment not found")
	case errors.Is(err, ErrNotOwner):
		slog.WarnContext(ctx, "comment update refused", "comment_id", id, "user_id", requester.ID)
		return nil, apperr.New(apperr.Forbidden, "You can only edit your own comments")
	case err != nil:
		return nil, apperr.Wrap(err, "updating comment")
	}

	slog.InfoContext(ctx, "comment updated", "comment_id", c.ID, "history_id", h.ID, "user_id", requester.ID)
	return c, nil
}

// Delete removes the requester's own comment. It reports false when the
// comment does not exist.
func (s *Service) Delete(ctx context.Context, requester *user.User, id int64) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id, requester.ID)
	if errors.Is(err, ErrNotOwner) {
		slog.WarnContext(ctx, "comment delete refused", "comment_id", id, "user_id", requester.ID)
		return false, apperr.New(apperr.Forbidden, "You can only delete your own comments")
	}
	if err != nil {
		return false, apperr.Wrap(err, "deleting comment")
	}

	if deleted {
		slog.InfoContext(ctx, "comment deleted", "comment_id", id, "user_id", requester.ID)
	}
	return deleted, nil
}

// ListVisible returns every comment written by a member of the requester's group.
func (s *Service) ListVisible(ctx context.Context, requester *user.User) ([]*Comment, error) {
	comments, err := s.repo.ListByGroup(ctx, requester.Group)
	if err != nil {
		return nil, apperr.Wrap(err, "listing comments")
	}
	return comments, nil
}

// GetVisible returns the comment if its owner shares the requester's group.
// A comment outside the group and a missing comment both yield nil without error.
func (s *Service) GetVisible(ctx context.Context, requester *user.User, id int64) (*Comment, error) {
	c, err := s.repo.GetByIDInGroup(ctx, id, requester.Group)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(err, "getting comment")
	}
	return c, nil
}

// ListHistoryVisible returns every history entry whose comment is visible to the requester.
func (s *Service) ListHistoryVisible(ctx context.Context, requester *user.User) ([]*History, error) {
	entries, err := s.repo.ListHistoryByGroup(ctx, requester.Group)
	if err != nil {
		return nil, apperr.Wrap(err, "listing comment histories")
	}
	return entries, nil
}

// GetHistoryVisible returns the history entry if its comment is visible to the requester, or nil.
func (s *Service) GetHistoryVisible(ctx context.Context, requester *user.User, id int64) (*History, error) {
	h, err := s.repo.GetHistoryByIDInGroup(ctx, id, requester.Group)
	if errors.Is(err, ErrHistoryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(err, "getting comment history")
	}
	return h, nil
}

// HistoryFor returns the edit history of one visible comment, oldest first.
func (s *Service) HistoryFor(ctx context.Context, requester *user.User, commentID int64) ([]*History, error) {
	c, err := s.GetVisible(ctx, requester, commentID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.New(apperr.NotFound, "Comment not found")
	}

	entries, err := s.repo.ListHistoryForCommentInGroup(ctx, commentID, requester.Group)
	if err != nil {
		return nil, apperr.Wrap(err, "listing comment history")
	}
	return entries, nil
}
