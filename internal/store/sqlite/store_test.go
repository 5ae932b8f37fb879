package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ankittk/agentsquad/internal/store"
)

func TestStore_roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "home", "squad.db")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = st.Close() }()
	ctx := context.Background()

	if _, err := st.Get(ctx, "dev"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("Get missing: %v", err)
	}
	if err := st.Put(ctx, "dev", "sess-abc123"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Put(ctx, "dev", "sess-def456"); err != nil {
		t.Fatalf("Put upsert: %v", err)
	}
	got, err := st.Get(ctx, "dev")
	if err != nil || got != "sess-def456" {
		t.Fatalf("Get: %q, %v", got, err)
	}
	names, err := st.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "dev" {
		t.Fatalf("List: %v, %v", names, err)
	}
	if err := st.Delete(ctx, "dev"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, "dev"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	names, err = st.List(ctx)
	if err != nil || names == nil || len(names) != 0 {
		t.Fatalf("List after delete: %#v, %v", names, err)
	}
}

func TestOpen_reopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "squad.db")
	ctx := context.Background()
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := st.Put(ctx, "dev", "sess-abc123"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = st.Close()

	st, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = st.Close() }()
	if got, err := st.Get(ctx, "dev"); err != nil || got != "sess-abc123" {
		t.Fatalf("Get after reopen: %q, %v", got, err)
	}
}

func TestOpen_emptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
