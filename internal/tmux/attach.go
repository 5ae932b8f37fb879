package tmux

import (
	"context"
	"os"
	"os/exec"
)

// Attach hands the current terminal to the session. Inside tmux it switches the client instead
// of nesting sessions. Blocks until the user detaches.
func Attach(ctx context.Context, sessionName string) error {
	args := []string{"attach-session", "-t", sessionName}
	if os.Getenv("TMUX") != "" {
		args = []string{"switch-client", "-t", sessionName}
	}
	cmd := exec.CommandContext(ctx, "tmux", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
