package config

import (
	"path/filepath"
	"strings"
)

// SafeName returns a filesystem-safe version of a session or agent name.
func SafeName(name string) string {
	r := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")
	return r.Replace(strings.TrimSpace(name))
}

// SessionsDir returns the directory holding one session record file per session name: <home>/sessions/.
func SessionsDir(home string) string {
	return filepath.Join(home, "sessions")
}

// LocksDir returns <home>/locks/.
func LocksDir(home string) string {
	return filepath.Join(home, "locks")
}

// SessionLockPath returns the lock file guarding setup of one multiplexer session.
func SessionLockPath(home, sessionName string) string {
	return filepath.Join(LocksDir(home), SafeName(sessionName)+".lock")
}

// DBPath returns the sqlite database used by the sqlite session store.
func DBPath(home string) string {
	return filepath.Join(home, "squad.db")
}
