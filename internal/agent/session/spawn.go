package session

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"sync"
	"time"
)

type outcomeKind int

const (
	outcomeToken outcomeKind = iota
	outcomeExited
	outcomeTimeout
)

// outcome is the first of: token seen on stdout, process exit, timeout.
type outcome struct {
	kind     outcomeKind
	token    string
	exitCode int
	stderr   string
	err      error // start failure or parent context cancellation
}

// tokenSettle is how long a match touching the end of stdout must stay unchanged before it is
// reported. Clients that print the token last and keep running never write past it.
const tokenSettle = 150 * time.Millisecond

// tokenWriter accumulates stdout and signals the first token match once. A match touching the
// end of the buffer may still be growing, so it is reported once more output follows it or after
// tokenSettle without further output.
type tokenWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	token  string
	found  chan string
	settle *time.Timer
}

func newTokenWriter() *tokenWriter {
	return &tokenWriter{found: make(chan string, 1)}
}

func (w *tokenWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	if w.token != "" {
		return len(p), nil
	}
	b := w.buf.Bytes()
	loc := tokenPattern.FindIndex(b)
	switch {
	case loc == nil:
	case loc[1] < len(b):
		w.report(string(b[loc[0]:loc[1]]))
	case w.settle == nil:
		w.settle = time.AfterFunc(tokenSettle, w.settled)
	default:
		w.settle.Reset(tokenSettle)
	}
	return len(p), nil
}

func (w *tokenWriter) settled() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.token != "" {
		return
	}
	if tok := tokenPattern.Find(w.buf.Bytes()); tok != nil {
		w.report(string(tok))
	}
}

// report must be called with mu held.
func (w *tokenWriter) report(tok string) {
	w.token = tok
	w.found <- tok
	if w.settle != nil {
		w.settle.Stop()
	}
}

func (w *tokenWriter) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.settle != nil {
		w.settle.Stop()
	}
}

// Final returns the token once output is complete, including one that ends the output.
func (w *tokenWriter) Final() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.token != "" {
		return w.token
	}
	return string(tokenPattern.Find(w.buf.Bytes()))
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// spawn runs the client and waits for the first outcome. The process is always killed and
// reaped before spawn returns.
func (m *Manager) spawn(ctx context.Context, agentName string) outcome {
	argv := m.command(agentName)
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	stdout := newTokenWriter()
	defer stdout.stop()
	stderr := &lockedBuffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Grandchildren holding the pipes open must not block Wait after a kill.
	cmd.WaitDelay = 2 * time.Second
	if err := cmd.Start(); err != nil {
		return outcome{kind: outcomeExited, err: err}
	}

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	timer := time.NewTimer(m.timeout())
	defer timer.Stop()

	select {
	case tok := <-stdout.found:
		cancel()
		<-exited
		return outcome{kind: outcomeToken, token: tok}
	case err := <-exited:
		if tok := stdout.Final(); tok != "" {
			return outcome{kind: outcomeToken, token: tok}
		}
		out := outcome{kind: outcomeExited, stderr: stderr.String()}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.exitCode = exitErr.ExitCode()
		} else if err != nil {
			out.err = err
		}
		return out
	case <-timer.C:
		cancel()
		<-exited
		if tok := stdout.Final(); tok != "" {
			return outcome{kind: outcomeToken, token: tok}
		}
		return outcome{kind: outcomeTimeout, stderr: stderr.String()}
	case <-ctx.Done():
		cancel()
		<-exited
		if tok := stdout.Final(); tok != "" {
			return outcome{kind: outcomeToken, token: tok}
		}
		return outcome{kind: outcomeExited, err: ctx.Err(), stderr: stderr.String()}
	}
}
