package cli

import (
	"fmt"

	"github.com/ankittk/agentsquad/internal/config"
	"github.com/ankittk/agentsquad/internal/orchestrator"
	"github.com/ankittk/agentsquad/internal/tmux"
	"github.com/spf13/cobra"
)

func newKillCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kill <session-name>",
		Short: "Terminate a squad and its tmux session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			alloc := tmux.NewAllocator(name)
			ok, err := alloc.CheckExistingSession(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("session %q is not running", name)
			}

			sq, err := config.LoadSquad(g.configPath)
			if err != nil {
				if err := alloc.KillSession(ctx); err != nil {
					return err
				}
			} else {
				// The session exists, so setup takes the non-mutating resume path.
				o := orchestrator.New(orchestrator.Options{
					NewAllocator: func(string) orchestrator.PaneAllocator { return alloc },
				})
				if _, err := o.SetupTeam(ctx, sq, name); err != nil {
					return err
				}
				if err := o.TerminateSquad(ctx); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Squad %q terminated\n", name)
			return nil
		},
	}
	return cmd
}
