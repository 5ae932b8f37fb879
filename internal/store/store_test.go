package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func exercise(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: expected ErrNotFound, got %v", err)
	}
	if err := st.Put(ctx, "alpha", "sess-abc123"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Put(ctx, "beta", "sess-def456"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Put(ctx, "alpha", "sess-xyz789"); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err := st.Get(ctx, "alpha")
	if err != nil || got != "sess-xyz789" {
		t.Fatalf("Get alpha: %q, %v", got, err)
	}
	names, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	sort.Strings(names)
	if strings.Join(names, ",") != "alpha,beta" {
		t.Fatalf("List: %v", names)
	}
	if err := st.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := st.Delete(ctx, "alpha"); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
	if _, err := st.Get(ctx, "alpha"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	exercise(t, NewFileStore(filepath.Join(t.TempDir(), "sessions")))
}

func TestFileStore_layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	st := NewFileStore(dir)
	ctx := context.Background()
	if err := st.Put(ctx, "dev", "sess-abc123"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "dev"+RecordSuffix))
	if err != nil {
		t.Fatalf("record file: %v", err)
	}
	if string(data) != "sess-abc123" {
		t.Fatalf("record content: %q", data)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	names, err := st.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "dev" {
		t.Fatalf("List: %v, %v", names, err)
	}
}

func TestFileStore_listMissingDir(t *testing.T) {
	st := NewFileStore(filepath.Join(t.TempDir(), "never-created"))
	names, err := st.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if names == nil || len(names) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", names)
	}
}

func TestFileStore_unreadable(t *testing.T) {
	dir := t.TempDir()
	st := NewFileStore(dir)
	// A directory where the record file should be makes ReadFile fail with something other than ErrNotExist.
	if err := os.Mkdir(filepath.Join(dir, "dev"+RecordSuffix), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := st.Get(context.Background(), "dev")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected non-NotFound read error, got %v", err)
	}
}

func TestFileStore_rejectsRewrittenNames(t *testing.T) {
	st := NewFileStore(t.TempDir())
	ctx := context.Background()
	if err := st.Put(ctx, "a_b", "sess-abc123"); err != nil {
		t.Fatalf("Put a_b: %v", err)
	}
	for _, name := range []string{"a b", "a/b", `a\b`, "a:b", " a_b", ""} {
		if err := st.Put(ctx, name, "sess-other1"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Put(%q) = %v, want ErrInvalidName", name, err)
		}
		if _, err := st.Get(ctx, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Get(%q) = %v, want ErrInvalidName", name, err)
		}
		if err := st.Delete(ctx, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Delete(%q) = %v, want ErrInvalidName", name, err)
		}
	}
	if got, err := st.Get(ctx, "a_b"); err != nil || got != "sess-abc123" {
		t.Fatalf("a_b overwritten: %q, %v", got, err)
	}
	names, err := st.List(ctx)
	if err != nil || len(names) != 1 || names[0] != "a_b" {
		t.Fatalf("List: %v, %v", names, err)
	}
}

func TestMemoryStore_zeroValue(t *testing.T) {
	var st MemoryStore
	ctx := context.Background()
	if err := st.Put(ctx, "dev", "sess-abc123"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if got, err := st.Get(ctx, "dev"); err != nil || got != "sess-abc123" {
		t.Fatalf("Get: %q, %v", got, err)
	}
}
