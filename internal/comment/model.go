// Package comment provides comments, their edit history and the group-scoped access rules over them.
package comment

import "time"

// Comment is a note written by a user. Only its owner may change or delete it.
type Comment struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// OwnedBy reports whether userID owns the comment.
func (c *Comment) OwnedBy(userID int64) bool {
	return c.UserID == userID
}

// History records one content change of a comment. Rows are append-only.
type History struct {
	ID        int64     `json:"id"`
	CommentID int64     `json:"comment_id"`
	Timestamp time.Time `json:"timestamp"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
}
