// Package graph serves the GraphQL API over the same services as the REST handlers.
package graph

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"strconv"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/evcraddock/bloggu/internal/apperr"
	"github.com/evcraddock/bloggu/internal/comment"
	"github.com/evcraddock/bloggu/internal/user"
)

//go:embed schema.graphql
var Schema string

const maxQueryDepth = 8

// NewSchema parses the schema and binds it to the services.
func NewSchema(users *user.Service, comments *comment.Service) *graphql.Schema {
	return graphql.MustParseSchema(Schema, &Resolver{users: users, comments: comments},
		graphql.MaxDepth(maxQueryDepth),
	)
}

// NewHandler returns an HTTP handler executing GraphQL requests.
// The requester is read from the request context, so wrap it with auth.Guard.Identify.
func NewHandler(users *user.Service, comments *comment.Service) http.Handler {
	return &relay.Handler{Schema: NewSchema(users, comments)}
}

// resolverError hides internal details from clients while keeping the kind in extensions.
type resolverError struct {
	err *apperr.Error
}

func (e resolverError) Error() string {
	return e.err.Message
}

func (e resolverError) Extensions() map[string]any {
	return e.err.Extensions()
}

func fail(ctx context.Context, err error) error {
	e := apperr.From(err)
	if e.Kind == apperr.Internal {
		slog.ErrorContext(ctx, "graphql resolver failed", "error", err)
	}
	return resolverError{e}
}

func toID(id int64) graphql.ID {
	return graphql.ID(strconv.FormatInt(id, 10))
}

func parseID(id graphql.ID) (int64, error) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n < 1 {
		return 0, apperr.Newf(apperr.Invalid, "invalid id %q", string(id))
	}
	return n, nil
}
