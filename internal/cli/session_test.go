package cli

import (
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/evcraddock/bloggu/internal/auth"
	"github.com/evcraddock/bloggu/internal/client"
	"github.com/evcraddock/bloggu/internal/comment"
	"github.com/evcraddock/bloggu/internal/db"
	"github.com/evcraddock/bloggu/internal/user"
	"github.com/evcraddock/bloggu/internal/web"
)

// startServer runs a real API server on a temporary database and points the CLI at it.
func startServer(t *testing.T) string {
	t.Helper()
	d, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	tokens, err := auth.NewTokenService("test-secret", "HS256", 0)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	users := user.NewService(user.NewRepository(d), tokens, user.WithBcryptCost(bcrypt.MinCost))
	comments := comment.NewService(comment.NewRepository(d))
	srv := httptest.NewServer(web.NewServer(users, comments, auth.NewGuard(tokens, users)))
	t.Cleanup(srv.Close)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("BLOGGU_SERVER_URL", srv.URL)
	t.Setenv("BLOGGU_TOKEN", "")
	return srv.URL
}

func TestSignupLoginAndComment(t *testing.T) {
	url := startServer(t)

	if _, err := executeWithInput(strings.NewReader("s3cret\n"), "signup", "-u", "alice", "-g", "eng"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := executeWithInput(strings.NewReader("wrong\n"), "login", "-u", "alice"); err == nil {
		t.Fatal("expected login with wrong password to fail")
	}
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Token != "" {
		t.Fatal("failed login must not store a token")
	}

	// Username and password both come from the prompt.
	if _, err := executeWithInput(strings.NewReader("alice\ns3cret\n"), "login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	cfg, err = loadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Token == "" {
		t.Fatal("expected token to be stored")
	}

	steps := [][]string{
		{"comment", "add", "first", "draft"},
		{"comment", "edit", "1", "final", "text"},
		{"comment", "list"},
		{"comment", "show", "1"},
		{"history"},
		{"history", "show", "1"},
		{"users"},
		{"users", "me"},
		{"status"},
	}
	for _, args := range steps {
		if _, err := executeCommand(args...); err != nil {
			t.Fatalf("%s: %v", strings.Join(args, " "), err)
		}
	}

	api := client.New(url, cfg.Token)
	c, err := api.GetComment(1)
	if err != nil {
		t.Fatalf("get comment: %v", err)
	}
	if c.Content != "final text" {
		t.Errorf("content = %q, want %q", c.Content, "final text")
	}
	history, err := api.CommentHistory(1)
	if err != nil || len(history) != 1 {
		t.Fatalf("history = %+v, %v", history, err)
	}
	if history[0].OldValue != "first draft" || history[0].NewValue != "final text" {
		t.Errorf("history = %+v", history[0])
	}

	if _, err := executeCommand("comment", "rm", "1"); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if _, err := api.GetComment(1); err == nil {
		t.Error("expected comment to be gone")
	}
}

func TestCommandsAcrossUsers(t *testing.T) {
	url := startServer(t)
	anon := client.New(url, "")
	for _, name := range []string{"alice", "bob"} {
		if _, err := anon.Signup(name, "pw", "eng"); err != nil {
			t.Fatalf("signup %s: %v", name, err)
		}
	}
	aliceToken, err := anon.Login("alice", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	bobToken, err := anon.Login("bob", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	t.Setenv("BLOGGU_TOKEN", aliceToken)
	if _, err := executeCommand("comment", "add", "alice's post"); err != nil {
		t.Fatalf("add: %v", err)
	}

	t.Setenv("BLOGGU_TOKEN", bobToken)
	_, err = executeCommand("comment", "edit", "1", "hijacked")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != "forbidden" {
		t.Errorf("edit by bob = %v, want forbidden", err)
	}
	if _, err := executeCommand("comment", "rm", "1"); err == nil {
		t.Error("expected rm by bob to fail")
	}

	if _, err := executeCommand("users", "update", "--group", "ops"); err != nil {
		t.Fatalf("update group: %v", err)
	}
	if _, err := executeCommand("comment", "show", "1"); err == nil {
		t.Error("expected comment to be hidden after leaving the group")
	}

	if _, err := executeCommand("users", "delete"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := executeCommand("users", "me"); err == nil {
		t.Error("expected deleted account to be rejected")
	}
}

func TestMigrate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "bloggu.db")

	if _, err := executeCommand("migrate", "--db", path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database not created: %v", err)
	}
	// Running again is a no-op.
	if _, err := executeCommand("migrate", "--db", path); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestServeRequiresSecret(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("JWT_SECRET", "")

	if err := runServe(context.Background(), ":0"); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}
