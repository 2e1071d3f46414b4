package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psantana5/leadtime/internal/aggregate"
	"github.com/psantana5/leadtime/internal/report"
)

var (
	describeInput inputFlags
	describeRules ruleFlags
)

var describeCmd = &cobra.Command{
	Use:   "describe [input]",
	Short: "Print descriptive statistics of the lead time columns",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		describeInput.apply(cmd)
		describeRules.apply(cmd)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		path, err := inputPath(args)
		if err != nil {
			return err
		}

		_, table, err := newRunner().Classify(cmd.Context(), path)
		if err != nil {
			return err
		}
		desc, err := aggregate.DescribeRecords(table.Records)
		if err != nil {
			return err
		}
		return report.RenderDescription(stdout(cmd), desc, format())
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeInput.register(describeCmd)
	describeRules.register(describeCmd)
}
