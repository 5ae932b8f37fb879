package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ankittk/agentsquad/internal/otel"
	"github.com/spf13/cobra"
)

// startMetrics installs the meter provider when --metrics-addr or --metrics-textfile is set.
func (g *globalFlags) startMetrics(ctx context.Context) error {
	if g.metricsAddr == "" && g.metricsTextfile == "" {
		return nil
	}
	handler, err := otel.InitMeterProvider(ctx, "agentsquad")
	if err != nil {
		return err
	}
	if err := otel.InitMetrics(ctx); err != nil {
		return err
	}
	if g.metricsAddr != "" {
		g.stopMetrics = serveMetrics(handler, g.metricsAddr)
	}
	return nil
}

// finishMetrics stops the metrics server and writes the textfile. Errors are logged only.
func (g *globalFlags) finishMetrics() {
	if g.stopMetrics != nil {
		g.stopMetrics()
		g.stopMetrics = nil
	}
	if g.metricsTextfile != "" {
		if err := otel.WriteTextfile(g.metricsTextfile); err != nil {
			slog.Warn("write metrics textfile failed", "path", g.metricsTextfile, "err", err)
		}
	}
}

// finishMetricsAfterRun wraps every runnable command so metrics are flushed whether or not the
// command fails. PersistentPostRun would only run on success.
func finishMetricsAfterRun(cmd *cobra.Command, g *globalFlags) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) error {
			defer g.finishMetrics()
			return run(cmd, args)
		}
	}
	for _, sub := range cmd.Commands() {
		finishMetricsAfterRun(sub, g)
	}
}

// serveMetrics serves /metrics on addr until the returned func is called.
func serveMetrics(handler http.Handler, addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Warn("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
