// Package tmux allocates and drives the panes of a squad's tmux session.
package tmux

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// CommandRunner executes one tmux command and returns its standard output.
// On failure the returned bytes carry tmux's diagnostic output, if any.
type CommandRunner interface {
	Run(ctx context.Context, args []string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "tmux", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return stderr.Bytes(), err
	}
	return out, err
}

func run(ctx context.Context, r CommandRunner, args ...string) ([]byte, error) {
	if r == nil {
		return nil, errors.New("tmux runner unavailable")
	}
	out, err := r.Run(ctx, args)
	if err != nil {
		if msg := bytes.TrimSpace(out); len(msg) > 0 {
			return nil, fmt.Errorf("tmux %s failed: %s: %w", args[0], msg, err)
		}
		return nil, fmt.Errorf("tmux %s failed: %w", args[0], err)
	}
	return out, nil
}
