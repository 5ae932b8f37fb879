package cli

import (
	"log/slog"

	"github.com/ankittk/agentsquad/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd(g *globalFlags, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp <session-name>",
		Short: "Serve the send_message tool over stdio for agents in a squad",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			alloc, _, err := attachLive(ctx, g, args[0])
			if err != nil {
				return err
			}
			if version == "" {
				version = "dev"
			}
			slog.Debug("mcp server starting", "session", args[0])
			return mcp.ServeStdio(mcp.NewToolkit(alloc), version)
		},
	}
	return cmd
}
