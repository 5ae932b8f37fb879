package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ankittk/agentsquad/internal/config"
	"github.com/ankittk/agentsquad/internal/git"
	"github.com/ankittk/agentsquad/internal/lock"
	"github.com/ankittk/agentsquad/internal/orchestrator"
	"github.com/ankittk/agentsquad/internal/tmux"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func runSquad(cmd *cobra.Command, g *globalFlags, sessionName string, detach bool) error {
	ctx := cmd.Context()
	home := config.MustHomeFrom(ctx)

	sq, err := config.LoadSquad(g.configPath)
	if err != nil {
		return &orchestrator.Error{Kind: orchestrator.KindConfig, Err: err}
	}

	l, err := lock.Acquire(config.SessionLockPath(home, sessionName))
	if err != nil {
		return err
	}
	defer l.Release()

	o := orchestrator.New(orchestrator.Options{ResolveRoot: workingRepoRoot})
	res, err := o.SetupTeam(ctx, sq, sessionName)
	if err != nil {
		var setupErr *orchestrator.Error
		if errors.As(err, &setupErr) && len(setupErr.LeftoverDirs) > 0 {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "warning: isolated workdirs were left on disk:")
			for _, d := range setupErr.LeftoverDirs {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", d)
			}
		}
		return err
	}

	printSetup(cmd.OutOrStdout(), res)
	l.Release()

	if detach || !isatty.IsTerminal(os.Stdin.Fd()) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Attach with: tmux attach -t %s\n", sessionName)
		return nil
	}
	return tmux.Attach(ctx, sessionName)
}

// workingRepoRoot returns the top level of the git repository containing the working directory.
func workingRepoRoot(ctx context.Context) (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return git.RepoRoot(ctx, wd)
}

func printSetup(w io.Writer, res orchestrator.SetupResult) {
	verb := "Created"
	if res.IsResumed {
		verb = "Resumed"
	}
	_, _ = fmt.Fprintf(w, "%s squad %q with %d panes\n", verb, res.SessionName, len(res.Panes))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "AGENT\tPANE\tSTATE")
	for _, a := range res.Agents {
		pane := a.PaneID
		if pane == "" {
			pane = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", a.Name, pane, a.State)
	}
	_ = tw.Flush()
	for _, d := range res.CreatedIsolatedDirs {
		_, _ = fmt.Fprintf(w, "Isolated workdir: %s\n", d)
	}
}
