package cmd

import (
	"github.com/spf13/cobra"
)

// inputFlags and ruleFlags are shared by every command that reads orders
type inputFlags struct {
	sheet           string
	createdColumn   string
	deliveredColumn string
	delimiter       string
	timezone        string
}

type ruleFlags struct {
	cutoffHour int
	slaHours   float64
	quantile   float64
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "worksheet to read from an xlsx input (default first sheet)")
	cmd.Flags().StringVar(&f.createdColumn, "created-column", "", "header of the creation timestamp column")
	cmd.Flags().StringVar(&f.deliveredColumn, "delivered-column", "", "header of the delivery timestamp column")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", `csv field delimiter, "\t" for tabs`)
	cmd.Flags().StringVar(&f.timezone, "timezone", "", "IANA zone for timestamps without an offset")
}

func (f *inputFlags) apply(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("sheet") {
		cfg.Input.Sheet = f.sheet
	}
	if flags.Changed("created-column") {
		cfg.Input.CreatedColumn = f.createdColumn
	}
	if flags.Changed("delivered-column") {
		cfg.Input.DeliveredColumn = f.deliveredColumn
	}
	if flags.Changed("delimiter") {
		cfg.Input.Delimiter = f.delimiter
	}
	if flags.Changed("timezone") {
		cfg.Input.Timezone = f.timezone
	}
}

func (f *ruleFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.cutoffHour, "cutoff-hour", 0, "hour from which orders carry over to the next day (default 16)")
	cmd.Flags().Float64Var(&f.slaHours, "sla-hours", 0, "on-time threshold in hours (default 4)")
	cmd.Flags().Float64Var(&f.quantile, "quantile", 0, "outlier cap quantile in (0,1] (default 0.95)")
}

func (f *ruleFlags) apply(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("cutoff-hour") {
		cfg.Rules.CutoffHour = f.cutoffHour
	}
	if flags.Changed("sla-hours") {
		cfg.Rules.SLAThresholdHours = f.slaHours
	}
	if flags.Changed("quantile") {
		cfg.Rules.OutlierQuantile = f.quantile
	}
}
