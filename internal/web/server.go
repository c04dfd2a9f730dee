// Package web provides the HTTP server and REST handlers for bloggu.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/evcraddock/bloggu/internal/auth"
	"github.com/evcraddock/bloggu/internal/comment"
	"github.com/evcraddock/bloggu/internal/graph"
	"github.com/evcraddock/bloggu/internal/logging"
	"github.com/evcraddock/bloggu/internal/user"
)

// Server is the bloggu HTTP server. REST and GraphQL share the same services.
type Server struct {
	users    *userHandlers
	comments *commentHandlers
	auth     *authHandlers
	mux      *http.ServeMux
	handler  http.Handler
}

// NewServer creates a server over the given services.
func NewServer(users *user.Service, comments *comment.Service, guard *auth.Guard) *Server {
	s := &Server{
		users:    &userHandlers{users: users},
		comments: &commentHandlers{comments: comments},
		auth:     &authHandlers{users: users},
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", handleHealth)

	// Public
	s.mux.HandleFunc("POST /signup", s.auth.handleSignup)
	s.mux.HandleFunc("POST /login", s.auth.handleLogin)

	// Bearer token required
	protect := func(pattern string, h http.HandlerFunc) {
		s.mux.Handle(pattern, guard.Identify(h))
	}
	protect("GET /users", s.users.list)
	protect("GET /users/me", s.users.me)
	protect("PATCH /users/me", s.users.updateMe)
	protect("DELETE /users/me", s.users.deleteMe)
	protect("GET /users/{id}", s.users.get)

	protect("GET /comments", s.comments.list)
	protect("POST /comments", s.comments.create)
	protect("GET /comments/{id}", s.comments.get)
	protect("PUT /comments/{id}", s.comments.update)
	protect("DELETE /comments/{id}", s.comments.remove)
	protect("GET /comments/{id}/histories", s.comments.histories)

	protect("GET /comment_histories", s.comments.listHistory)
	protect("GET /comment_histories/{id}", s.comments.getHistory)

	// GraphQL resolvers check the requester per field; createUser and login need no token.
	s.mux.Handle("POST /graphql", guard.Identify(graph.NewHandler(users, comments)))

	s.handler = logging.RequestLogger(withClientAddr(s.mux))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// withClientAddr stores the caller's IP for per-client login throttling.
func withClientAddr(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		addr := r.RemoteAddr
		if host, _, err := net.SplitHostPort(addr); err == nil {
			addr = host
		}
		next.ServeHTTP(w, r.WithContext(user.WithClientAddr(r.Context(), addr)))
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
