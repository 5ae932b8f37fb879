package cli

import (
	"log/slog"
	"os"

	"github.com/ankittk/agentsquad/internal/config"
	"github.com/spf13/cobra"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	home       string
	verbose    bool
	configPath string
	storeKind  string
	dsn        string

	metricsAddr     string
	metricsTextfile string
	stopMetrics     func()
}

func NewRootCmd(version string) *cobra.Command {
	g := &globalFlags{}
	var detach bool

	cmd := &cobra.Command{
		Use:           "squad <session-name>",
		Short:         "Squad: run a team of coding agents in one tmux session",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(cmd, g.verbose)
			home, err := config.ResolveHome(g.home)
			if err != nil {
				return err
			}
			cmd.SetContext(config.WithHome(cmd.Context(), home))
			return g.startMetrics(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSquad(cmd, g, args[0], detach)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.home, "home", "", "Override squad home directory (default: ~/.agentsquad, env: SQUAD_HOME)")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&g.configPath, "config", "c", config.DefaultSquadFile, "Squad config file")
	pf.StringVar(&g.storeKind, "store", storeFile, "Session record store: file, sqlite or postgres")
	pf.StringVar(&g.dsn, "dsn", "", "Postgres connection string (default: $DATABASE_URL)")
	pf.StringVar(&g.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs (e.g. 127.0.0.1:9464)")
	pf.StringVar(&g.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file when the command exits")
	cmd.Flags().BoolVarP(&detach, "detach", "d", false, "Do not attach to the session after setup")

	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newStatusCmd(g))
	cmd.AddCommand(newKillCmd(g))
	cmd.AddCommand(newSessionCmd(g))
	cmd.AddCommand(newSendCmd(g))
	cmd.AddCommand(newMCPCmd(g, version))
	finishMetricsAfterRun(cmd, g)

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.SetVersionTemplate("{{.Version}}\n")
	if version != "" {
		cmd.Version = version
	} else {
		cmd.Version = "dev"
	}

	return cmd
}

func setupLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
}
