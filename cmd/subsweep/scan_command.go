package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"subsweep/internal/scan"
	"subsweep/internal/schedule"
	"subsweep/internal/services"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var libraries []string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run one library scan now",
		Long: "Scan the configured Jellyfin libraries once: extract text subtitles for every " +
			"episode without extracted files and replace unwanted languages with placeholders.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger("stderr")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			p, err := buildPipeline(cfg, logger, pipelineOverrides{libraries: libraries})
			if err != nil {
				return err
			}
			runner, journal, err := newRunner(cfg, p, logger)
			if err != nil {
				return err
			}
			defer journal.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			line := newProgressLine(out)
			summary, runErr := runner.RunOnce(signalCtx, schedule.TriggerCLI, line.callback())
			line.done()

			if errors.Is(runErr, services.ErrAlreadyRunning) {
				return fmt.Errorf("another scan is running (lock %s); try again later", cfg.LockPath())
			}
			if summary.RunID != "" {
				printSummary(out, summary)
			}
			if runErr != nil {
				if errors.Is(runErr, context.Canceled) {
					fmt.Fprintln(out, "Scan cancelled; finished episodes are kept")
				}
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&libraries, "library", "l", nil, "Library name to scan (repeatable); overrides extraction.library_names")
	return cmd
}

func printSummary(out io.Writer, s scan.Summary) {
	roots := strings.Join(s.RootLabels(), ", ")
	rows := [][]string{
		{"Run", s.RunID},
		{"Libraries", roots},
		{"Languages", s.Filter},
		{"Episodes", strconv.Itoa(s.Seen)},
		{"Skipped (already extracted)", strconv.Itoa(s.Skipped)},
		{"Processed", strconv.Itoa(s.Processed)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Subtitles extracted", strconv.Itoa(s.SubtitlesExtracted)},
		{"Placeholders written", strconv.Itoa(s.PlaceholdersWritten)},
		{"Duration", formatDuration(s.Duration())},
	}
	if s.PlaceholderFailures > 0 {
		rows = append(rows, []string{"Placeholder failures", strconv.Itoa(s.PlaceholderFailures)})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
}
