package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subsweep/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent scan runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			journal, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer journal.Close()

			runs, err := journal.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No scans recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Trigger,
					run.Status,
					strconv.Itoa(run.Seen),
					strconv.Itoa(run.Processed),
					strconv.Itoa(run.Skipped),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.PlaceholdersWritten),
					formatDuration(run.Duration()),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Trigger", "Status", "Episodes", "Processed", "Skipped", "Failed", "Placeholders", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}
