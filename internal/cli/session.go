package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/ankittk/agentsquad/internal/agent/session"
	"github.com/spf13/cobra"
)

func newSessionCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage persisted conversational sessions",
	}
	cmd.AddCommand(newSessionStartCmd(g))
	cmd.AddCommand(newSessionListCmd(g))
	cmd.AddCommand(newSessionRmCmd(g))
	return cmd
}

func newSessionStartCmd(g *globalFlags) *cobra.Command {
	var (
		agent   string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "start <session-name>",
		Short: "Start or resume a conversational session and print the command to run it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openSessionManager(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer closeStore()
			m.Timeout = timeout

			res, err := m.StartOrResumeSession(cmd.Context(), args[0], agent)
			if err != nil {
				return err
			}
			state := "resumed"
			if res.IsNew {
				state = "new"
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "session %s (%s)\n", res.SessionID, state)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), res.Command)
			return nil
		},
	}
	cmd.Flags().StringVar(&agent, "agent", "", "Agent name to pass to the client")
	cmd.Flags().DurationVar(&timeout, "timeout", session.DefaultTimeout, "How long to wait for the client to report a session id")
	return cmd
}

func newSessionListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openSessionManager(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer closeStore()

			names, err := m.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			sort.Strings(names)
			for _, name := range names {
				tok, err := m.LoadExistingSession(cmd.Context(), name)
				if err != nil {
					tok = "(invalid)"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, tok)
			}
			return nil
		},
	}
}

func newSessionRmCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <session-name>",
		Short: "Forget a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, closeStore, err := openSessionManager(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer closeStore()
			return m.RemoveSession(cmd.Context(), args[0])
		},
	}
}
