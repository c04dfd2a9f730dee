package comment

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/evcraddock/bloggu/internal/db"
	"github.com/evcraddock/bloggu/internal/user"
)

type fixture struct {
	repo  *Repository
	users *user.Repository
	alice *user.User
	bob   *user.User
	carol *user.User
}

// testSetup opens a fresh database with alice and bob in "eng" and carol in "ops".
func testSetup(t *testing.T) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	users := user.NewRepository(d)
	f := &fixture{repo: NewRepository(d), users: users}
	for _, u := range []struct {
		dst   **user.User
		name  string
		group string
	}{
		{&f.alice, "alice", "eng"},
		{&f.bob, "bob", "eng"},
		{&f.carol, "carol", "ops"},
	} {
		created, err := users.Create(context.Background(), u.name, u.group, "hash")
		if err != nil {
			t.Fatalf("create %s: %v", u.name, err)
		}
		*u.dst = created
	}
	return f
}

func mustCreate(t *testing.T, f *fixture, owner *user.User, content string) *Comment {
	t.Helper()
	c, err := f.repo.Create(context.Background(), owner.ID, content, time.Now())
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return c
}

func TestCreateAndGet(t *testing.T) {
	f := testSetup(t)

	c := mustCreate(t, f, f.alice, "hello")
	if c.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if c.UserID != f.alice.ID {
		t.Errorf("user_id = %d, want %d", c.UserID, f.alice.ID)
	}
	if c.Content != "hello" {
		t.Errorf("content = %q, want %q", c.Content, "hello")
	}
	if c.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
	if c.UpdatedAt != nil {
		t.Errorf("updated_at = %v, want nil for an unedited comment", c.UpdatedAt)
	}

	got, err := f.repo.GetByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "hello" {
		t.Errorf("content = %q, want %q", got.Content, "hello")
	}
}

func TestCreateEmptyContent(t *testing.T) {
	f := testSetup(t)

	if _, err := f.repo.Create(context.Background(), f.alice.ID, "", time.Now()); err == nil {
		t.Fatal("expected error for empty content")
	}
}

func TestCreateUnknownOwner(t *testing.T) {
	f := testSetup(t)

	if _, err := f.repo.Create(context.Background(), 9999, "orphan", time.Now()); err == nil {
		t.Fatal("expected foreign key error for unknown owner")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	f := testSetup(t)

	_, err := f.repo.GetByID(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListByGroup(t *testing.T) {
	f := testSetup(t)
	ctx := context.Background()

	a := mustCreate(t, f, f.alice, "from alice")
	b := mustCreate(t, f, f.bob, "from bob")
	mustCreate(t, f, f.carol, "from carol")

	eng, err := f.repo.ListByGroup(ctx, "eng")
	if err != nil {
		t.Fatalf("list eng: %v", err)
	}
	if len(eng) != 2 {
		t.Fatalf("got %d comments, want 2", len(eng))
	}
	if eng[0].ID != a.ID || eng[1].ID != b.ID {
		t.Errorf("ids = [%d %d], want [%d %d]", eng[0].ID, eng[1].ID, a.ID, b.ID)
	}

	ops, err := f.repo.ListByGroup(ctx, "ops")
	if err != nil {
		t.Fatalf("list ops: %v", err)
	}
	if len(ops) != 1 || ops[0].Content != "from carol" {
		t.Errorf("ops comments = %+v, want only carol's", ops)
	}

	none, err := f.repo.ListByGroup(ctx, "sales")
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("got %v, want empty non-nil slice", none)
	}
}

func TestGetByIDInGroup(t *testing.T) {
	f := testSetup(t)
	ctx := context.Background()
	c := mustCreate(t, f, f.alice, "hello")

	tests := []struct {
		name    string
		id      int64
		group   string
		wantErr error
	}{
		{"same group", c.ID, "eng", nil},
		{"other group", c.ID, "ops", ErrNotFound},
		{"missing", 9999, "eng", ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.repo.GetByIDInGroup(ctx, tt.id, tt.group)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != c.ID {
				t.Errorf("id = %d, want %d", got.ID, c.ID)
			}
		})
	}
}

func TestUpdateContentAppendsHistory(t *testing.T) {
	f := testSetup(t)
	ctx := context.Background()
	c := mustCreate(t, f, f.alice, "hello")

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	updated, h, err := f.repo.UpdateContent(ctx, c.ID, f.alice.ID, "edited", at)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Content != "edited" {
		t.Errorf("content = %q, want %q", updated.Content, "edited")
	}
	if updated.UpdatedAt == nil || !updated.UpdatedAt.Equal(at) {
		t.Errorf("updated_at = %v, want %v", updated.UpdatedAt, at)
	}
	if h.OldValue != "hello" || h.NewValue != "edited" || h.CommentID != c.ID {
		t.Errorf("history = %+v, want hello -> edited on comment %d", h, c.ID)
	}

	entries, err := f.repo.ListHistoryForCommentInGroup(ctx, c.ID, "eng")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d history rows, want 1", len(entries))
	}
	if entries[0].ID != h.ID || !entries[0].Timestamp.Equal(at) {
		t.Errorf("stored history = %+v, want id %d at %v", entries[0], h.ID, at)
	}

	// A second edit snapshots the content written by the first.
	if _, _, err := f.repo.UpdateContent(ctx, c.ID, f.alice.ID, "again", at.Add(time.Minute)); err != nil {
		t.Fatalf("second update: %v", err)
	}
	entries, err = f.repo.ListHistoryForCommentInGroup(ctx, c.ID, "eng")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 2 || entries[1].OldValue != "edited" || entries[1].NewValue != "again" {
		t.Errorf("history = %+v, want a second edited -> again row", entries)
	}
}

func TestUpdateContentErrors(t *testing.T) {
	f := testSetup(t)
	ctx := context.Background()
	c := mustCreate(t, f, f.alice, "hello")

	tests := []struct {
		name    string
		id      int64
		ownerID int64
		wantErr error
	}{
		{"missing comment", 9999, f.alice.ID, ErrNotFound},
		{"not owner", c.ID, f.bob.ID, ErrNotOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.repo.UpdateContent(ctx, tt.id, tt.ownerID, "edited", time.Now())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := f.repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "hello" || got.UpdatedAt != nil {
		t.Errorf("comment changed after refused updates: %+v", got)
	}
	entries, err := f.repo.ListHistoryByGroup(ctx, "eng")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d history rows, want 0", len(entries))
	}
}

func TestConcurrentUpdatesKeepHistoryConsistent(t *testing.T) {
	f := testSetup(t)
	ctx := context.Background()
	c := mustCreate(t, f, f.alice, "v0")

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := f.repo.UpdateContent(ctx, c.ID, f.alice.ID, "v"+string(rune('1'+i)), time.Now())
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	entries, err := f.repo.ListHistoryForCommentInGroup(ctx, c.ID, "eng")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != writers {
		t.Fatalf("got %d history rows, want %d", len(entries), writers)
	}

	// Each row's old value is the previous row's new value, ending at the stored content.
	prev := "v0"
	for i, h := range entries {
		if h.OldValue != prev {
			t.Errorf("row %d old_value = %q, want %q", i, h.OldValue, prev)
		}
		prev = h.NewValue
	}
	got, err := f.repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != prev {
		t.Errorf("content = %q, want last history new_value %q", got.Content, prev)
	}
}

func TestDelete(t *testing.T) {
	f := testSetup(t)
	ctx := context.Background()
	c := mustCreate(t, f, f.alice, "hello")
	if _, _, err := f.repo.UpdateContent(ctx, c.ID, f.alice.ID, "edited", time.Now()); err != nil {
		t.Fatalf("update: %v", err)
	}

	if _, err := f.repo.Delete(ctx, c.ID, f.bob.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("delete by bob: err = %v, want ErrNotOwner", err)
	}
	if _, err := f.repo.GetByID(ctx, c.ID); err != nil {
		t.Fatalf("comment gone after refused delete: %v", err)
	}

	deleted, err := f.repo.Delete(ctx, c.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !deleted {
		t.Error("deleted = false, want true")
	}

	entries, err := f.repo.ListHistoryByGroup(ctx, "eng")
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d history rows after delete, want 0", len(entries))
	}

	deleted, err = f.repo.Delete(ctx, c.ID, f.alice.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if deleted {
		t.Error("second delete = true, want false")
	}
}

func TestHistoryGroupScope(t *testing.T) {
	f := testSetup(t)
	ctx := context.Background()

	a := mustCreate(t, f, f.alice, "a0")
	cc := mustCreate(t, f, f.carol, "c0")
	_, ha, err := f.repo.UpdateContent(ctx, a.ID, f.alice.ID, "a1", time.Now())
	if err != nil {
		t.Fatalf("update alice: %v", err)
	}
	_, hc, err := f.repo.UpdateContent(ctx, cc.ID, f.carol.ID, "c1", time.Now())
	if err != nil {
		t.Fatalf("update carol: %v", err)
	}

	eng, err := f.repo.ListHistoryByGroup(ctx, "eng")
	if err != nil {
		t.Fatalf("list eng: %v", err)
	}
	if len(eng) != 1 || eng[0].ID != ha.ID {
		t.Errorf("eng history = %+v, want only %d", eng, ha.ID)
	}

	if _, err := f.repo.GetHistoryByIDInGroup(ctx, hc.ID, "eng"); !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("carol's history from eng: err = %v, want ErrHistoryNotFound", err)
	}
	got, err := f.repo.GetHistoryByIDInGroup(ctx, hc.ID, "ops")
	if err != nil {
		t.Fatalf("get ops history: %v", err)
	}
	if got.NewValue != "c1" {
		t.Errorf("new_value = %q, want %q", got.NewValue, "c1")
	}

	other, err := f.repo.ListHistoryForCommentInGroup(ctx, cc.ID, "eng")
	if err != nil {
		t.Fatalf("list carol's comment history from eng: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d rows, want 0", len(other))
	}
}

func TestVisibilityFollowsOwnerGroupChange(t *testing.T) {
	f := testSetup(t)
	ctx := context.Background()
	c := mustCreate(t, f, f.alice, "hello")

	f.alice.Group = "ops"
	if _, err := f.users.Update(ctx, f.alice); err != nil {
		t.Fatalf("move alice: %v", err)
	}

	if _, err := f.repo.GetByIDInGroup(ctx, c.ID, "eng"); !errors.Is(err, ErrNotFound) {
		t.Errorf("eng lookup: err = %v, want ErrNotFound", err)
	}
	if _, err := f.repo.GetByIDInGroup(ctx, c.ID, "ops"); err != nil {
		t.Errorf("ops lookup: %v", err)
	}
}
