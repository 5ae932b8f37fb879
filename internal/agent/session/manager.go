// Package session starts or resumes the persistent conversational session of an agent and
// remembers its session token between runs.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/ankittk/agentsquad/internal/otel"
	"github.com/ankittk/agentsquad/internal/store"
)

// TokenPrefix is the fixed literal every session token starts with.
const TokenPrefix = "sess-"

var (
	tokenPattern = regexp.MustCompile(regexp.QuoteMeta(TokenPrefix) + `[A-Za-z0-9]+`)
	tokenExact   = regexp.MustCompile(`^` + tokenPattern.String() + `$`)
)

// DefaultTimeout bounds how long a new session may take to print its token.
const DefaultTimeout = 30 * time.Second

// DefaultCommand is the conversational client started for new sessions.
var DefaultCommand = []string{"claude", "code"}

// ValidToken reports whether tok is a well-formed session token.
func ValidToken(tok string) bool {
	return tokenExact.MatchString(tok)
}

// Result describes a started or resumed session.
type Result struct {
	SessionID string
	IsNew     bool
	// Command is the literal command line that attaches to the session.
	Command string
}

// Manager starts or resumes sessions and persists their tokens in Store.
type Manager struct {
	Store   store.Store
	Command []string      // client argv; DefaultCommand when empty
	Timeout time.Duration // 0 = DefaultTimeout
}

// NewManager returns a Manager with default command and timeout.
func NewManager(st store.Store) *Manager {
	return &Manager{Store: st}
}

// StartOrResumeSession returns the stored session for sessionName if its token is valid, and
// otherwise spawns a new client (qualified with agentName when non-empty), captures the token it
// prints and stores it.
func (m *Manager) StartOrResumeSession(ctx context.Context, sessionName, agentName string) (Result, error) {
	started := time.Now()
	tok, err := m.LoadExistingSession(ctx, sessionName)
	if err == nil {
		slog.Debug("resuming session", "session", sessionName, "session_id", tok)
		otel.RecordSessionStart(ctx, false, time.Since(started))
		return Result{SessionID: tok, Command: BuildCommandString(tok, agentName)}, nil
	}
	slog.Debug("no reusable session record", "session", sessionName, "err", err)

	out := m.spawn(ctx, agentName)
	switch out.kind {
	case outcomeToken:
	case outcomeTimeout:
		return Result{}, fmt.Errorf("%w: %w after %s", ErrSpawn, ErrTimeout, m.timeout())
	case outcomeExited:
		if out.err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrSpawn, out.err)
		}
		detail := strings.TrimSpace(out.stderr)
		if detail == "" {
			detail = fmt.Sprintf("exit code %d", out.exitCode)
		}
		return Result{}, fmt.Errorf("%w: process exited without a session token: %s", ErrSpawn, detail)
	}

	if err := m.SaveSession(ctx, sessionName, out.token); err != nil {
		return Result{}, err
	}
	slog.Info("session started", "session", sessionName, "agent", agentName, "session_id", out.token)
	otel.RecordSessionStart(ctx, true, time.Since(started))
	return Result{SessionID: out.token, IsNew: true, Command: BuildCommandString(out.token, agentName)}, nil
}

// LoadExistingSession returns the stored token for sessionName, failing with ErrFile when the
// record is missing or unreadable and ErrParse when its content is not a valid token.
func (m *Manager) LoadExistingSession(ctx context.Context, sessionName string) (string, error) {
	raw, err := m.Store.Get(ctx, sessionName)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFile, err)
	}
	tok := strings.TrimSpace(raw)
	if !ValidToken(tok) {
		return "", fmt.Errorf("%w: record %q holds %q", ErrParse, sessionName, tok)
	}
	return tok, nil
}

// SaveSession stores tok under sessionName.
func (m *Manager) SaveSession(ctx context.Context, sessionName, tok string) error {
	if !ValidToken(tok) {
		return fmt.Errorf("%w: %q", ErrParse, tok)
	}
	if err := m.Store.Put(ctx, sessionName, tok); err != nil {
		return fmt.Errorf("%w: save %q: %w", ErrFile, sessionName, err)
	}
	return nil
}

// RemoveSession deletes the record for sessionName. Removing an absent record succeeds.
func (m *Manager) RemoveSession(ctx context.Context, sessionName string) error {
	if err := m.Store.Delete(ctx, sessionName); err != nil {
		return fmt.Errorf("%w: remove %q: %w", ErrFile, sessionName, err)
	}
	return nil
}

// ListSessions returns stored session names in no particular order.
func (m *Manager) ListSessions(ctx context.Context) ([]string, error) {
	names, err := m.Store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFile, err)
	}
	return names, nil
}

// BuildCommandString returns the command that attaches to session tok, optionally as agentName.
func BuildCommandString(tok, agentName string) string {
	cmd := "claude code --session " + tok
	if agentName != "" {
		cmd += " --agent " + agentName
	}
	return cmd
}

func (m *Manager) timeout() time.Duration {
	if m.Timeout > 0 {
		return m.Timeout
	}
	return DefaultTimeout
}

func (m *Manager) command(agentName string) []string {
	argv := m.Command
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	argv = append([]string(nil), argv...)
	if agentName != "" {
		argv = append(argv, "--agent", agentName)
	}
	return argv
}
