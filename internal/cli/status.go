package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/ankittk/agentsquad/internal/config"
	"github.com/ankittk/agentsquad/internal/tmux"
	"github.com/spf13/cobra"
)

// attachLive maps the panes of a running session to the agents of the squad config.
func attachLive(ctx context.Context, g *globalFlags, sessionName string) (*tmux.Allocator, config.Squad, error) {
	sq, err := config.LoadSquad(g.configPath)
	if err != nil {
		return nil, config.Squad{}, err
	}
	alloc := tmux.NewAllocator(sessionName)
	ok, err := alloc.CheckExistingSession(ctx)
	if err != nil {
		return nil, config.Squad{}, err
	}
	if !ok {
		return nil, config.Squad{}, fmt.Errorf("session %q is not running", sessionName)
	}
	if _, err := alloc.AttachToSession(ctx, sq); err != nil {
		return nil, config.Squad{}, err
	}
	return alloc, sq, nil
}

func newStatusCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <session-name>",
		Short: "Show whether a squad session is running and its panes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			out := cmd.OutOrStdout()
			alloc := tmux.NewAllocator(name)
			ok, err := alloc.CheckExistingSession(cmd.Context())
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintf(out, "Squad %q not running\n", name)
				return nil
			}
			_, _ = fmt.Fprintf(out, "Squad %q running\n", name)

			sq, err := config.LoadSquad(g.configPath)
			if err != nil {
				// Without a config the panes cannot be named.
				return nil
			}
			panes, err := alloc.AttachToSession(cmd.Context(), sq)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "AGENT\tPANE\tTARGET")
			for _, p := range panes {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", p.AgentName, p.ID, p.Target)
			}
			return tw.Flush()
		},
	}
	return cmd
}
