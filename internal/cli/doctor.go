package cli

import (
	"errors"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

// requiredTools are looked up on PATH by doctor.
var requiredTools = []struct {
	name string
	why  string
}{
	{"tmux", "hosts the squad's panes"},
	{"git", "creates isolated workdirs"},
	{"claude", "runs the agents' conversational sessions"},
}

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Verify runtime dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var problems []string
			for _, tool := range requiredTools {
				if _, err := exec.LookPath(tool.name); err != nil {
					problems = append(problems, fmt.Sprintf("missing dependency: %s (not found on PATH; %s)", tool.name, tool.why))
				}
			}

			if len(problems) > 0 {
				for _, p := range problems {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), p)
				}
				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	return cmd
}
