// Package lock guards a squad session against concurrent setup from two processes.
package lock

import "errors"

// ErrLocked is returned by Acquire when another process holds the lock.
var ErrLocked = errors.New("session is locked by another process")
