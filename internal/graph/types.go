package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/evcraddock/bloggu/internal/comment"
	"github.com/evcraddock/bloggu/internal/user"
)

type userResolver struct {
	u *user.User
}

func (r *userResolver) ID() graphql.ID          { return toID(r.u.ID) }
func (r *userResolver) Username() string        { return r.u.Username }
func (r *userResolver) Group() string           { return r.u.Group }
func (r *userResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.u.CreatedAt} }

type commentResolver struct {
	root *Resolver
	c    *comment.Comment
}

func (r *commentResolver) ID() graphql.ID          { return toID(r.c.ID) }
func (r *commentResolver) UserID() graphql.ID      { return toID(r.c.UserID) }
func (r *commentResolver) Content() string         { return r.c.Content }
func (r *commentResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.c.CreatedAt} }

func (r *commentResolver) UpdatedAt() *graphql.Time {
	if r.c.UpdatedAt == nil {
		return nil
	}
	return &graphql.Time{Time: *r.c.UpdatedAt}
}

func (r *commentResolver) Author(ctx context.Context) (*userResolver, error) {
	return r.root.userOrNil(ctx, r.c.UserID)
}

func (r *commentResolver) Histories(ctx context.Context) ([]*historyResolver, error) {
	me, err := r.root.requester(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := r.root.comments.HistoryFor(ctx, me, r.c.ID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return r.root.historyList(entries), nil
}

type historyResolver struct {
	root *Resolver
	h    *comment.History
}

func (r *historyResolver) ID() graphql.ID          { return toID(r.h.ID) }
func (r *historyResolver) CommentID() graphql.ID   { return toID(r.h.CommentID) }
func (r *historyResolver) Timestamp() graphql.Time { return graphql.Time{Time: r.h.Timestamp} }
func (r *historyResolver) OldValue() string        { return r.h.OldValue }
func (r *historyResolver) NewValue() string        { return r.h.NewValue }

func (r *historyResolver) Comment(ctx context.Context) (*commentResolver, error) {
	me, err := r.root.requester(ctx)
	if err != nil {
		return nil, err
	}
	return r.root.visibleComment(ctx, me, r.h.CommentID)
}

type tokenResolver struct {
	token string
}

func (r *tokenResolver) AccessToken() string { return r.token }
func (r *tokenResolver) TokenType() string   { return "bearer" }
