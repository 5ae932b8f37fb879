package session

import "errors"

// Session-continuity failures. A missing record matches both ErrFile and store.ErrNotFound;
// an unreadable record matches ErrFile only.
var (
	ErrFile    = errors.New("session record unavailable")
	ErrParse   = errors.New("malformed session token")
	ErrSpawn   = errors.New("session spawn failed")
	ErrTimeout = errors.New("timed out waiting for session token")
)
