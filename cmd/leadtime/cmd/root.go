package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/psantana5/leadtime/internal/config"
	"github.com/psantana5/leadtime/internal/report"
	"github.com/psantana5/leadtime/internal/runner"
	"github.com/psantana5/leadtime/pkg/logging"
	"github.com/psantana5/leadtime/pkg/tracing"
)

// Version is set at build time
var Version = "dev"

var (
	cfgFile      string
	outputFormat string
	logLevel     string
	logJSON      bool

	cfg    *config.Config
	logger *logging.Logger
	tracer *tracing.Provider
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "leadtime",
	Short: "Delivery lead time and SLA reporting",
	Long: `leadtime reads an order table with creation and delivery timestamps, computes
business-adjusted lead times, classifies orders against the delivery SLA and
reports daily and hourly compliance.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.leadtime/config.yaml, then ./leadtime.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "", "output format: table, json or yaml (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
}

// setup loads the configuration then builds the logger and tracer
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Format = outputFormat
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if cfg.Log.Dir != "" {
		logger, err = logging.NewFileLogger(cfg.Log.Dir, "leadtime", level, cfg.Log.JSON)
		if err != nil {
			return err
		}
	} else {
		logger = logging.NewLogger(level, cfg.Log.JSON)
	}

	cfg.Tracing.ServiceVersion = Version
	tracer, err = tracing.InitTracer(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	return nil
}

func teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if tracer != nil {
		if err := tracer.Shutdown(ctx); err != nil {
			logger.Warn("Tracer shutdown failed", logging.Fields{"error": err.Error()})
		}
	}
	if logger != nil {
		return logger.Close()
	}
	return nil
}

func newRunner() *runner.Runner {
	return runner.New(cfg, logger, tracer)
}

// inputPath prefers the positional argument over input.path
func inputPath(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.Path != "" {
		return cfg.Input.Path, nil
	}
	return "", fmt.Errorf("no input file: pass one as an argument or set input.path")
}

func stdout(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

// format returns the effective output format
func format() string {
	if cfg == nil || cfg.Output.Format == "" {
		return report.FormatTable
	}
	return cfg.Output.Format
}
