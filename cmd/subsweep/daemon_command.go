package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"subsweep/internal/config"
	"subsweep/internal/logging"
	"subsweep/internal/metrics"
	"subsweep/internal/preflight"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var runNow bool

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run scans on the configured cron schedule",
		Long: "Run in the foreground, scanning on schedule.cron_expr until interrupted. " +
			"When metrics are enabled, Prometheus metrics are served on metrics.bind.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger("stdout")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return runDaemon(signalCtx, cfg, logger, runNow || cfg.Schedule.RunOnStart)
		},
	}

	cmd.Flags().BoolVar(&runNow, "run-now", false, "Start a scan immediately instead of waiting for the schedule")
	return cmd
}

// runDaemon blocks until ctx is cancelled. A scan in flight is cancelled with
// ctx and its partial episode rolled back by the orchestrator.
func runDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger, runOnStart bool) error {
	p, err := buildPipeline(cfg, logger, pipelineOverrides{})
	if err != nil {
		return err
	}
	runner, journal, err := newRunner(cfg, p, logger)
	if err != nil {
		return err
	}
	defer journal.Close()

	logPreflight(ctx, cfg, p, logger)

	var srv *http.Server
	if cfg.Metrics.Enabled {
		srv, err = startMetricsServer(cfg.Metrics.Bind, logger)
		if err != nil {
			return err
		}
	}

	if err := runner.Start(ctx, cfg.Schedule.CronExpr, runOnStart); err != nil {
		if srv != nil {
			_ = srv.Close()
		}
		return err
	}
	logger.Info("subsweep daemon started",
		logging.String("subtitle_dir", cfg.Paths.SubtitleDir),
		logging.String("languages", cfg.LanguageFilter().String()),
		logging.String("next_run", runner.NextRun().Format(time.RFC3339)),
	)

	<-ctx.Done()
	logger.Info("subsweep daemon shutting down")
	runner.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", logging.Error(err))
		}
	}
	return nil
}

func logPreflight(ctx context.Context, cfg *config.Config, p *pipeline, logger *slog.Logger) {
	for _, result := range preflight.RunAll(ctx, cfg, p.index) {
		if result.Passed {
			continue
		}
		impact := "scans will fail until resolved"
		if result.Optional {
			impact = "optional feature unavailable"
		}
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
			logging.String(logging.FieldErrorHint, "run subsweep config validate --online"),
			logging.String(logging.FieldImpact, impact),
		)
	}
}

func startMetricsServer(bind string, logger *slog.Logger) (*http.Server, error) {
	srv := metrics.NewHTTPServer(bind)
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on metrics bind %s: %w", srv.Addr, err)
	}
	logger.Info("metrics endpoint listening", logging.String("addr", listener.Addr().String()))
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(logger, "metrics server stopped", "metrics_server_failed", logging.Error(err))
		}
	}()
	return srv, nil
}
