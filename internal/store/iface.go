// Package store persists session records: one opaque session token per session name.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record exists for the name.
var ErrNotFound = errors.New("session record not found")

// Store is a key-value store of session tokens keyed by session name.
// Implementations: *FileStore (default), *MemoryStore (tests), *sqlite.Store and *postgres.Store.
type Store interface {
	// Get returns the raw stored token. Callers validate its format.
	Get(ctx context.Context, name string) (string, error)
	Put(ctx context.Context, name, token string) error
	// Delete removes the record. Deleting a missing record succeeds.
	Delete(ctx context.Context, name string) error
	// List returns stored session names in no particular order. Never nil.
	List(ctx context.Context) ([]string, error)
}
