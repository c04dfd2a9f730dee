package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"github.com/evcraddock/bloggu/internal/apperr"
	"github.com/evcraddock/bloggu/internal/auth"
	"github.com/evcraddock/bloggu/internal/comment"
	"github.com/evcraddock/bloggu/internal/user"
)

// Resolver is the root of both the query and the mutation type.
type Resolver struct {
	users    *user.Service
	comments *comment.Service
}

func (r *Resolver) requester(ctx context.Context) (*user.User, error) {
	u, err := auth.Requester(ctx)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return u, nil
}

// Queries

func (r *Resolver) Me(ctx context.Context) (*userResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	return &userResolver{me}, nil
}

func (r *Resolver) AllUsers(ctx context.Context) ([]*userResolver, error) {
	if _, err := r.requester(ctx); err != nil {
		return nil, err
	}
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, fail(ctx, err)
	}
	out := make([]*userResolver, len(users))
	for i, u := range users {
		out[i] = &userResolver{u}
	}
	return out, nil
}

func (r *Resolver) UserByID(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	if _, err := r.requester(ctx); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return r.userOrNil(ctx, id)
}

func (r *Resolver) userOrNil(ctx context.Context, id int64) (*userResolver, error) {
	u, err := r.users.Get(ctx, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, nil
		}
		return nil, fail(ctx, err)
	}
	return &userResolver{u}, nil
}

func (r *Resolver) AllComments(ctx context.Context) ([]*commentResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	comments, err := r.comments.ListVisible(ctx, me)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return r.commentList(comments), nil
}

func (r *Resolver) CommentByID(ctx context.Context, args struct{ ID graphql.ID }) (*commentResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return r.visibleComment(ctx, me, id)
}

func (r *Resolver) visibleComment(ctx context.Context, me *user.User, id int64) (*commentResolver, error) {
	c, err := r.comments.GetVisible(ctx, me, id)
	if err != nil {
		return nil, fail(ctx, err)
	}
	if c == nil {
		return nil, nil
	}
	return &commentResolver{root: r, c: c}, nil
}

func (r *Resolver) AllCommentHistories(ctx context.Context) ([]*historyResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := r.comments.ListHistoryVisible(ctx, me)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return r.historyList(entries), nil
}

func (r *Resolver) CommentHistoryByID(ctx context.Context, args struct{ ID graphql.ID }) (*historyResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	h, err := r.comments.GetHistoryVisible(ctx, me, id)
	if err != nil {
		return nil, fail(ctx, err)
	}
	if h == nil {
		return nil, nil
	}
	return &historyResolver{root: r, h: h}, nil
}

func (r *Resolver) CommentHistories(ctx context.Context, args struct{ CommentID graphql.ID }) ([]*historyResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.CommentID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	entries, err := r.comments.HistoryFor(ctx, me, id)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return r.historyList(entries), nil
}

// Mutations

func (r *Resolver) CreateUser(ctx context.Context, args struct {
	Username string
	Password string
	Group    string
}) (*userResolver, error) {
	u, err := r.users.Signup(ctx, user.SignupRequest{
		Username: args.Username,
		Password: args.Password,
		Group:    args.Group,
	})
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &userResolver{u}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct {
	Username string
	Password string
}) (*tokenResolver, error) {
	token, err := r.users.Login(ctx, args.Username, args.Password)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &tokenResolver{token}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct {
	Username *string
	Group    *string
}) (*userResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	u, err := r.users.UpdateSelf(ctx, me, user.UpdateRequest{Username: args.Username, Group: args.Group})
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &userResolver{u}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context) (bool, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return false, err
	}
	deleted, err := r.users.DeleteSelf(ctx, me)
	if err != nil {
		return false, fail(ctx, err)
	}
	return deleted, nil
}

func (r *Resolver) CreateComment(ctx context.Context, args struct{ Content string }) (*commentResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	c, err := r.comments.Create(ctx, me, args.Content)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &commentResolver{root: r, c: c}, nil
}

func (r *Resolver) UpdateComment(ctx context.Context, args struct {
	ID      graphql.ID
	Content string
}) (*commentResolver, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, fail(ctx, err)
	}
	c, err := r.comments.Update(ctx, me, id, args.Content)
	if err != nil {
		return nil, fail(ctx, err)
	}
	return &commentResolver{root: r, c: c}, nil
}

func (r *Resolver) DeleteComment(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	me, err := r.requester(ctx)
	if err != nil {
		return false, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return false, fail(ctx, err)
	}
	deleted, err := r.comments.Delete(ctx, me, id)
	if err != nil {
		return false, fail(ctx, err)
	}
	return deleted, nil
}

func (r *Resolver) commentList(comments []*comment.Comment) []*commentResolver {
	out := make([]*commentResolver, len(comments))
	for i, c := range comments {
		out[i] = &commentResolver{root: r, c: c}
	}
	return out
}

func (r *Resolver) historyList(entries []*comment.History) []*historyResolver {
	out := make([]*historyResolver, len(entries))
	for i, h := range entries {
		out[i] = &historyResolver{root: r, h: h}
	}
	return out
}
