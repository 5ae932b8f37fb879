package lock

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestAcquire_exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "squad.lock")
	l, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := Acquire(path); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Acquire = %v, want ErrLocked", err)
	}
	l.Release()
	l2, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	l2.Release()
	l2.Release()
}
