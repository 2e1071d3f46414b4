package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/psantana5/leadtime/internal/report"
)

var (
	analyzeInput inputFlags
	analyzeRules ruleFlags

	analyzeOutDir       string
	analyzeCleaned      []string
	analyzeCharts       bool
	analyzeFillHours    bool
	analyzeLateSamples  int
	analyzeMetricsFile  string
	analyzeFindingsFile string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input]",
	Short: "Run the full lead time and SLA report",
	Long: `Read the order table, compute lead times and SLA classifications, print the
report and write the cleaned table, charts, metrics textfile and findings into
the output directory.`,
	Example: `  leadtime analyze orders.xlsx
  leadtime analyze orders.csv --out-dir ./report --cleaned csv,sqlite --output json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeInput.register(analyzeCmd)
	analyzeRules.register(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeOutDir, "out-dir", "", "directory for written outputs, empty disables them (default from config)")
	analyzeCmd.Flags().StringSliceVar(&analyzeCleaned, "cleaned", nil, "cleaned table formats: csv, xlsx, sqlite")
	analyzeCmd.Flags().BoolVar(&analyzeCharts, "charts", true, "write PNG charts")
	analyzeCmd.Flags().BoolVar(&analyzeFillHours, "fill-hours", false, "report all 24 hours, including hours without orders")
	analyzeCmd.Flags().IntVar(&analyzeLateSamples, "late-samples", 0, "number of slowest late orders to list")
	analyzeCmd.Flags().StringVar(&analyzeMetricsFile, "metrics-file", "", "Prometheus textfile name, empty disables it")
	analyzeCmd.Flags().StringVar(&analyzeFindingsFile, "findings-file", "", "findings markdown file name, empty disables it")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analyzeInput.apply(cmd)
	analyzeRules.apply(cmd)

	flags := cmd.Flags()
	if flags.Changed("out-dir") {
		cfg.Output.Dir = analyzeOutDir
	}
	if flags.Changed("cleaned") {
		cfg.Output.Cleaned = analyzeCleaned
	}
	if flags.Changed("charts") {
		cfg.Output.Charts = analyzeCharts
	}
	if flags.Changed("fill-hours") {
		cfg.Output.FillHours = analyzeFillHours
	}
	if flags.Changed("late-samples") {
		cfg.Output.LateSamples = analyzeLateSamples
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile = analyzeMetricsFile
	}
	if flags.Changed("findings-file") {
		cfg.Output.FindingsFile = analyzeFindingsFile
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	path, err := inputPath(args)
	if err != nil {
		return err
	}

	res, err := newRunner().Analyze(cmd.Context(), path)
	if err != nil {
		return err
	}

	if err := report.Render(stdout(cmd), res.Summary, format()); err != nil {
		return err
	}
	if format() == report.FormatTable && len(res.Files) > 0 {
		fmt.Fprintf(stdout(cmd), "\nWrote %d files to %s\n", len(res.Files), cfg.Output.Dir)
	}
	return nil
}
