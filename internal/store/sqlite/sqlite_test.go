package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/relaychat/relaychat-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestCreateAndGetUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	created, err := st.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == 0 || created.Username != "alice" {
		t.Fatalf("unexpected user: %+v", created)
	}
	if !created.AllowMessages {
		t.Fatalf("new accounts must accept private messages by default")
	}

	byName, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != created.ID {
		t.Fatalf("id mismatch: %d vs %d", byName.ID, created.ID)
	}

	if _, err := st.GetUserByUsername(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, "alice", "hash"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := st.CreateUser(ctx, "alice", "hash2")
	if err == nil || !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestSetAllowMessages(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	if err := st.SetAllowMessages(ctx, user.ID, false); err != nil {
		t.Fatalf("set allow_messages: %v", err)
	}
	updated, err := st.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if updated.AllowMessages {
		t.Fatalf("preference not persisted")
	}

	if err := st.SetAllowMessages(ctx, 9999, true); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown account, got %v", err)
	}
}

func TestBanLifecycle(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	banned, err := st.IsBanned(ctx, 7)
	if err != nil || banned {
		t.Fatalf("fresh account should not be banned: %v %v", banned, err)
	}

	if err := st.BanAccount(ctx, 7, "spam"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	// Re-banning updates the reason instead of failing.
	if err := st.BanAccount(ctx, 7, "more spam"); err != nil {
		t.Fatalf("re-ban: %v", err)
	}

	banned, err = st.IsBanned(ctx, 7)
	if err != nil || !banned {
		t.Fatalf("expected banned, got %v %v", banned, err)
	}

	if err := st.UnbanAccount(ctx, 7); err != nil {
		t.Fatalf("unban: %v", err)
	}
	if err := st.UnbanAccount(ctx, 7); err != nil {
		t.Fatalf("double unban should be a no-op: %v", err)
	}

	banned, err = st.IsBanned(ctx, 7)
	if err != nil || banned {
		t.Fatalf("expected unbanned, got %v %v", banned, err)
	}
}
