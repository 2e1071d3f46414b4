package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psantana5/leadtime/internal/export"
	"github.com/psantana5/leadtime/internal/report"
)

var (
	classifyInput inputFlags
	classifyRules ruleFlags
	classifyCSV   bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify [input]",
	Short: "Print the per-order derived table",
	Long: `Print every retained order with its lead time, on-time status, SLA window and
SLA status. With --csv the full cleaned table, passthrough columns included,
is written as CSV.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		classifyInput.apply(cmd)
		classifyRules.apply(cmd)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		path, err := inputPath(args)
		if err != nil {
			return err
		}

		res, table, err := newRunner().Classify(cmd.Context(), path)
		if err != nil {
			return err
		}
		if classifyCSV {
			return export.WriteCSV(stdout(cmd), table.Records, res.ExtraColumns)
		}
		return report.RenderRecords(stdout(cmd), table.Records, format())
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyInput.register(classifyCmd)
	classifyRules.register(classifyCmd)
	classifyCmd.Flags().BoolVar(&classifyCSV, "csv", false, "write the cleaned table as CSV")
}
