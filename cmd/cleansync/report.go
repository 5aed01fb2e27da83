package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tmorel/cleansync/internal/model"
	"github.com/tmorel/cleansync/internal/period"
	"github.com/tmorel/cleansync/internal/report"
	syncsvc "github.com/tmorel/cleansync/internal/sync"
	"github.com/tmorel/cleansync/internal/ui"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize job records for a period",
	Long: `Summarize job records whose date falls in the selected period window.

Shows totals, per-status counts, per-area counts, and the completion rate.
With --csv, the filtered records are also written to a CSV file.

Examples:
  cleansync report --period weekly
  cleansync report --period monthly --date 2024-03-12
  cleansync report --period all --csv jobs.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(syncsvc.Hooks{})
		if err != nil {
			return err
		}
		defer app.Close()

		tasks, _ := app.svc.Load(cmd.Context())

		subset, err := filterForFlags(tasks, reportFlags.period, reportFlags.date)
		if err != nil {
			return err
		}

		ref, _ := resolveDate(reportFlags.date)
		stats := report.Summarize(subset)

		fmt.Printf("\n%s %s report (reference date %s)\n\n", ui.RenderAccent("📋"), reportFlags.period, ref)
		fmt.Printf("Records: %d\n", stats.Total)
		fmt.Printf("Completion: %.0f%%\n\n", stats.Completion*100)

		if stats.Total > 0 {
			fmt.Println("By status:")
			for _, s := range model.Statuses {
				if n := stats.ByStatus[s]; n > 0 {
					fmt.Printf("  %-12s %d\n", s, n)
				}
			}

			fmt.Println("\nBy area:")
			for _, name := range stats.AreaNames() {
				fmt.Printf("  %-20s %d\n", name, stats.ByArea[name])
			}
		}

		if reportFlags.csv != "" {
			f, err := os.Create(reportFlags.csv)
			if err != nil {
				return fmt.Errorf("failed to create CSV file: %w", err)
			}
			defer f.Close()

			if err := report.WriteCSV(f, subset); err != nil {
				return err
			}
			fmt.Printf("\n%s Wrote %d record(s) to %s\n", ui.RenderPass("✓"), len(subset), reportFlags.csv)
		}

		fmt.Println()
		return nil
	},
}

var reportFlags struct {
	period string
	date   string
	csv    string
}

func init() {
	reportCmd.Flags().StringVar(&reportFlags.period, "period", string(period.Weekly), "period window (daily, weekly, monthly, yearly, all)")
	reportCmd.Flags().StringVar(&reportFlags.date, "date", "", "reference date for the period window (default: today)")
	reportCmd.Flags().StringVar(&reportFlags.csv, "csv", "", "also write the filtered records to this CSV file")

	rootCmd.AddCommand(reportCmd)
}
