package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ankittk/agentsquad/internal/store"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "client.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestBuildCommandString(t *testing.T) {
	if got := BuildCommandString("sess-x", ""); got != "claude code --session sess-x" {
		t.Errorf("without agent: %q", got)
	}
	if got := BuildCommandString("sess-x", "bob"); got != "claude code --session sess-x --agent bob" {
		t.Errorf("with agent: %q", got)
	}
}

func TestValidToken(t *testing.T) {
	for tok, want := range map[string]bool{
		"sess-abc123": true,
		"sess-A1":     true,
		"sess-":       false,
		"not-a-token": false,
		"sess-ab_c":   false,
		" sess-abc":   false,
	} {
		if got := ValidToken(tok); got != want {
			t.Errorf("ValidToken(%q) = %v, want %v", tok, got, want)
		}
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewMemoryStore())
	if err := m.SaveSession(ctx, "s", "sess-abc123"); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	got, err := m.LoadExistingSession(ctx, "s")
	if err != nil || got != "sess-abc123" {
		t.Fatalf("LoadExistingSession: %q, %v", got, err)
	}
}

func TestLoadExistingSession_failures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewManager(store.NewFileStore(dir))

	_, err := m.LoadExistingSession(ctx, "never")
	if !errors.Is(err, ErrFile) || !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing record: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad"+store.RecordSuffix), []byte("not-a-token"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = m.LoadExistingSession(ctx, "bad")
	if !errors.Is(err, ErrParse) || errors.Is(err, ErrFile) {
		t.Fatalf("malformed record: %v", err)
	}

	if err := os.Mkdir(filepath.Join(dir, "dir"+store.RecordSuffix), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err = m.LoadExistingSession(ctx, "dir")
	if !errors.Is(err, ErrFile) || errors.Is(err, store.ErrNotFound) {
		t.Fatalf("unreadable record: %v", err)
	}
}

func TestSaveSession_rejectsMalformed(t *testing.T) {
	m := NewManager(store.NewMemoryStore())
	if err := m.SaveSession(context.Background(), "s", "nope"); !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestRemoveAndListSessions(t *testing.T) {
	ctx := context.Background()
	m := NewManager(store.NewFileStore(filepath.Join(t.TempDir(), "sessions")))
	names, err := m.ListSessions(ctx)
	if err != nil || len(names) != 0 {
		t.Fatalf("ListSessions on missing dir: %v, %v", names, err)
	}
	if err := m.RemoveSession(ctx, "ghost"); err != nil {
		t.Fatalf("RemoveSession absent: %v", err)
	}
	_ = m.SaveSession(ctx, "a", "sess-1")
	_ = m.SaveSession(ctx, "b", "sess-2")
	names, err = m.ListSessions(ctx)
	if err != nil || len(names) != 2 {
		t.Fatalf("ListSessions: %v, %v", names, err)
	}
	if err := m.RemoveSession(ctx, "a"); err != nil {
		t.Fatalf("RemoveSession: %v", err)
	}
	if err := m.RemoveSession(ctx, "a"); err != nil {
		t.Fatalf("RemoveSession twice: %v", err)
	}
}

func TestStartOrResume_resumesValidRecord(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_ = st.Put(ctx, "dev", "sess-keep1\n")
	m := &Manager{Store: st, Command: []string{filepath.Join(t.TempDir(), "does-not-exist")}}
	res, err := m.StartOrResumeSession(ctx, "dev", "bob")
	if err != nil {
		t.Fatalf("StartOrResumeSession: %v", err)
	}
	if res.IsNew || res.SessionID != "sess-keep1" {
		t.Fatalf("result: %+v", res)
	}
	if res.Command != "claude code --session sess-keep1 --agent bob" {
		t.Fatalf("command: %q", res.Command)
	}
}

func TestStartOrResume_newSessionCapturesToken(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	script := writeScript(t, `echo "starting up"
echo "session: sess-Ab12cd ready"
exec sleep 10`)
	m := &Manager{Store: st, Command: []string{script}, Timeout: 5 * time.Second}

	started := time.Now()
	res, err := m.StartOrResumeSession(ctx, "dev", "")
	if err != nil {
		t.Fatalf("StartOrResumeSession: %v", err)
	}
	if time.Since(started) > 4*time.Second {
		t.Fatalf("subprocess was not terminated once the token appeared")
	}
	if !res.IsNew || res.SessionID != "sess-Ab12cd" || res.Command != "claude code --session sess-Ab12cd" {
		t.Fatalf("result: %+v", res)
	}
	if got, _ := st.Get(ctx, "dev"); got != "sess-Ab12cd" {
		t.Fatalf("stored token: %q", got)
	}
}

func TestStartOrResume_tokenPrintedLastWhileRunning(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	script := writeScript(t, `printf 'sess-abc123'
exec sleep 10`)
	m := &Manager{Store: st, Command: []string{script}, Timeout: 5 * time.Second}

	started := time.Now()
	res, err := m.StartOrResumeSession(ctx, "dev", "")
	if err != nil {
		t.Fatalf("StartOrResumeSession: %v", err)
	}
	if time.Since(started) > 4*time.Second {
		t.Fatal("trailing token was only picked up at the timeout")
	}
	if !res.IsNew || res.SessionID != "sess-abc123" {
		t.Fatalf("result: %+v", res)
	}
	if got, _ := st.Get(ctx, "dev"); got != "sess-abc123" {
		t.Fatalf("stored token: %q", got)
	}
}

func TestStartOrResume_tokenSeenBeforeTimeout(t *testing.T) {
	// The timeout is shorter than the settle interval, so only the timeout path sees the token.
	script := writeScript(t, `printf 'sess-late1'
exec sleep 10`)
	m := &Manager{Store: store.NewMemoryStore(), Command: []string{script}, Timeout: tokenSettle / 2}
	res, err := m.StartOrResumeSession(context.Background(), "dev", "")
	if errors.Is(err, ErrTimeout) {
		t.Skip("client did not print before the timeout")
	}
	if err != nil {
		t.Fatalf("StartOrResumeSession: %v", err)
	}
	if res.SessionID != "sess-late1" {
		t.Fatalf("result: %+v", res)
	}
}

func TestStartOrResume_malformedRecordStartsNew(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_ = st.Put(ctx, "dev", "not-a-token")
	script := writeScript(t, `printf 'sess-new42'`)
	m := &Manager{Store: st, Command: []string{script}, Timeout: 5 * time.Second}
	res, err := m.StartOrResumeSession(ctx, "dev", "")
	if err != nil {
		t.Fatalf("StartOrResumeSession: %v", err)
	}
	if !res.IsNew || res.SessionID != "sess-new42" {
		t.Fatalf("result: %+v", res)
	}
}

func TestStartOrResume_agentQualifierPassed(t *testing.T) {
	ctx := context.Background()
	script := writeScript(t, `if [ "$1" = "--agent" ] && [ "$2" = "bob" ]; then echo "sess-bob1 ok"; else echo "bad args: $*" >&2; exit 2; fi`)
	m := &Manager{Store: store.NewMemoryStore(), Command: []string{script}, Timeout: 5 * time.Second}
	res, err := m.StartOrResumeSession(ctx, "dev", "bob")
	if err != nil {
		t.Fatalf("StartOrResumeSession: %v", err)
	}
	if res.SessionID != "sess-bob1" {
		t.Fatalf("result: %+v", res)
	}
}

func TestStartOrResume_exitWithStderr(t *testing.T) {
	script := writeScript(t, `echo "not logged in" >&2
exit 3`)
	m := &Manager{Store: store.NewMemoryStore(), Command: []string{script}, Timeout: 5 * time.Second}
	_, err := m.StartOrResumeSession(context.Background(), "dev", "")
	if !errors.Is(err, ErrSpawn) || errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
	if !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("error should carry stderr: %v", err)
	}
}

func TestStartOrResume_exitWithoutStderr(t *testing.T) {
	script := writeScript(t, `exit 4`)
	m := &Manager{Store: store.NewMemoryStore(), Command: []string{script}, Timeout: 5 * time.Second}
	_, err := m.StartOrResumeSession(context.Background(), "dev", "")
	if !errors.Is(err, ErrSpawn) || !strings.Contains(err.Error(), "exit code 4") {
		t.Fatalf("expected exit code in error, got %v", err)
	}
}

func TestStartOrResume_timeout(t *testing.T) {
	st := store.NewMemoryStore()
	script := writeScript(t, `exec sleep 10`)
	m := &Manager{Store: st, Command: []string{script}, Timeout: 200 * time.Millisecond}
	started := time.Now()
	_, err := m.StartOrResumeSession(context.Background(), "dev", "")
	if !errors.Is(err, ErrTimeout) || !errors.Is(err, ErrSpawn) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(started) > 5*time.Second {
		t.Fatal("timeout did not terminate the subprocess promptly")
	}
	if names, _ := st.List(context.Background()); len(names) != 0 {
		t.Fatalf("nothing should be stored on timeout: %v", names)
	}
}

func TestStartOrResume_missingBinary(t *testing.T) {
	m := &Manager{Store: store.NewMemoryStore(), Command: []string{filepath.Join(t.TempDir(), "nope")}}
	_, err := m.StartOrResumeSession(context.Background(), "dev", "")
	if !errors.Is(err, ErrSpawn) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
}
