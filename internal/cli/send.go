package cli

import (
	"fmt"
	"strings"

	"github.com/ankittk/agentsquad/internal/mcp"
	"github.com/spf13/cobra"
)

func newSendCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <session-name> <agent> <message>...",
		Short: "Send a message to an agent's pane",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			alloc, _, err := attachLive(cmd.Context(), g, args[0])
			if err != nil {
				return err
			}
			tk := mcp.NewToolkit(alloc)
			out, err := tk.ExecuteTool(cmd.Context(), mcp.ToolSendMessage, map[string]any{
				mcp.ParamAgentName: args[1],
				mcp.ParamMessage:   strings.Join(args[2:], " "),
			})
			if err != nil {
				return err
			}
			res, ok := out.(mcp.MessageResult)
			if !ok {
				return fmt.Errorf("unexpected %s result %T", mcp.ToolSendMessage, out)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Sent to %s at %s\n", res.TargetAgent, res.Timestamp.Format("15:04:05"))
			return nil
		},
	}
	return cmd
}
