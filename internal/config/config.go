package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/leadtime/internal/ingest"
	"github.com/psantana5/leadtime/pkg/models"
	"github.com/psantana5/leadtime/pkg/tracing"
)

// EnvPrefix prefixes every environment override, e.g. LEADTIME_INPUT_PATH
const EnvPrefix = "LEADTIME"

// Config is the complete configuration of a report run
type Config struct {
	Input   InputConfig    `yaml:"input" json:"input" mapstructure:"input"`
	Rules   models.Rules   `yaml:"rules" json:"rules" mapstructure:"rules"`
	Output  OutputConfig   `yaml:"output" json:"output" mapstructure:"output"`
	Log     LogConfig      `yaml:"log" json:"log" mapstructure:"log"`
	Tracing tracing.Config `yaml:"tracing" json:"tracing" mapstructure:"tracing"`
}

// InputConfig describes where the order table lives and how to read it
type InputConfig struct {
	Path             string   `yaml:"path" json:"path" mapstructure:"path"`
	Format           string   `yaml:"format" json:"format" mapstructure:"format"` // auto, csv, xlsx
	Sheet            string   `yaml:"sheet" json:"sheet" mapstructure:"sheet"`
	Delimiter        string   `yaml:"delimiter" json:"delimiter" mapstructure:"delimiter"`
	CreatedColumn    string   `yaml:"created_column" json:"created_column" mapstructure:"created_column"`
	DeliveredColumn  string   `yaml:"delivered_column" json:"delivered_column" mapstructure:"delivered_column"`
	TimestampLayouts []string `yaml:"timestamp_layouts" json:"timestamp_layouts" mapstructure:"timestamp_layouts"`
	Timezone         string   `yaml:"timezone" json:"timezone" mapstructure:"timezone"`
}

// OutputConfig selects what a run writes
type OutputConfig struct {
	Dir          string   `yaml:"dir" json:"dir" mapstructure:"dir"`
	Format       string   `yaml:"format" json:"format" mapstructure:"format"`   // table, json, yaml
	Cleaned      []string `yaml:"cleaned" json:"cleaned" mapstructure:"cleaned"` // csv, xlsx, sqlite
	Charts       bool     `yaml:"charts" json:"charts" mapstructure:"charts"`
	MetricsFile  string   `yaml:"metrics_file" json:"metrics_file" mapstructure:"metrics_file"`
	FindingsFile string   `yaml:"findings_file" json:"findings_file" mapstructure:"findings_file"`
	FillHours    bool     `yaml:"fill_hours" json:"fill_hours" mapstructure:"fill_hours"`
	LateSamples  int      `yaml:"late_samples" json:"late_samples" mapstructure:"late_samples"`
}

// LogConfig controls the run logger
type LogConfig struct {
	Level string `yaml:"level" json:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" json:"json" mapstructure:"json"`
	Dir   string `yaml:"dir" json:"dir" mapstructure:"dir"` // empty logs to stderr only
}

var (
	validInputFormats   = []string{ingest.FormatAuto, ingest.FormatCSV, ingest.FormatXLSX}
	validOutputFormats  = []string{"table", "json", "yaml"}
	validCleanedFormats = []string{"csv", "xlsx", "sqlite"}
)

// Default returns the configuration used when no file or env override is present
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Format:           ingest.FormatAuto,
			Delimiter:        ",",
			CreatedColumn:    models.ColumnCreatedAt,
			DeliveredColumn:  models.ColumnDeliveredAt,
			TimestampLayouts: append([]string(nil), ingest.DefaultTimestampLayouts...),
			Timezone:         "UTC",
		},
		Rules: models.DefaultRules(),
		Output: OutputConfig{
			Dir:          "./report",
			Format:       "table",
			Cleaned:      []string{"csv"},
			Charts:       true,
			MetricsFile:  "leadtime.prom",
			FindingsFile: "findings.md",
			LateSamples:  10,
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracing: tracing.Config{
			ServiceName: "leadtime",
			Environment: "development",
		},
	}
}

// Load reads configuration from path, or from the default search locations
// when path is empty, then applies LEADTIME_* environment overrides.
// Missing default files are not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if found := firstExisting(SearchPaths()); found != "" {
		v.SetConfigFile(found)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", found, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SearchPaths lists the config files tried when no --config flag is given
func SearchPaths() []string {
	paths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".leadtime", "config.yaml"))
	}
	return append(paths, "leadtime.yaml")
}

func firstExisting(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// setDefaults registers every key so env overrides apply even without a file
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("input.path", cfg.Input.Path)
	v.SetDefault("input.format", cfg.Input.Format)
	v.SetDefault("input.sheet", cfg.Input.Sheet)
	v.SetDefault("input.delimiter", cfg.Input.Delimiter)
	v.SetDefault("input.created_column", cfg.Input.CreatedColumn)
	v.SetDefault("input.delivered_column", cfg.Input.DeliveredColumn)
	v.SetDefault("input.timestamp_layouts", cfg.Input.TimestampLayouts)
	v.SetDefault("input.timezone", cfg.Input.Timezone)

	v.SetDefault("rules.cutoff_hour", cfg.Rules.CutoffHour)
	v.SetDefault("rules.next_day_start_hour", cfg.Rules.NextDayStartHour)
	v.SetDefault("rules.afternoon_deadline_hour", cfg.Rules.AfternoonDeadlineHour)
	v.SetDefault("rules.sla_threshold_hours", cfg.Rules.SLAThresholdHours)
	v.SetDefault("rules.outlier_quantile", cfg.Rules.OutlierQuantile)

	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.cleaned", cfg.Output.Cleaned)
	v.SetDefault("output.charts", cfg.Output.Charts)
	v.SetDefault("output.metrics_file", cfg.Output.MetricsFile)
	v.SetDefault("output.findings_file", cfg.Output.FindingsFile)
	v.SetDefault("output.fill_hours", cfg.Output.FillHours)
	v.SetDefault("output.late_samples", cfg.Output.LateSamples)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.json", cfg.Log.JSON)
	v.SetDefault("log.dir", cfg.Log.Dir)

	v.SetDefault("tracing.enabled", cfg.Tracing.Enabled)
	v.SetDefault("tracing.endpoint", cfg.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.service_name", cfg.Tracing.ServiceName)
	v.SetDefault("tracing.service_version", cfg.Tracing.ServiceVersion)
	v.SetDefault("tracing.environment", cfg.Tracing.Environment)
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if !contains(validInputFormats, c.Input.Format) {
		return fmt.Errorf("input.format must be one of %v, got %q", validInputFormats, c.Input.Format)
	}
	if utf8.RuneCountInString(c.Input.Delimiter) > 1 && c.Input.Delimiter != `\t` {
		return fmt.Errorf("input.delimiter must be a single character, got %q", c.Input.Delimiter)
	}
	if _, err := time.LoadLocation(c.Input.Timezone); err != nil {
		return fmt.Errorf("input.timezone: %w", err)
	}
	if !contains(validOutputFormats, c.Output.Format) {
		return fmt.Errorf("output.format must be one of %v, got %q", validOutputFormats, c.Output.Format)
	}
	for _, f := range c.Output.Cleaned {
		if !contains(validCleanedFormats, f) {
			return fmt.Errorf("output.cleaned entries must be among %v, got %q", validCleanedFormats, f)
		}
	}
	if c.Output.LateSamples < 0 {
		return fmt.Errorf("output.late_samples must not be negative, got %d", c.Output.LateSamples)
	}
	if c.Tracing.Enabled && c.Tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.endpoint is required when tracing is enabled")
	}
	return nil
}

// IngestOptions converts the input section into reader options
func (c *Config) IngestOptions() (ingest.Options, error) {
	loc, err := time.LoadLocation(c.Input.Timezone)
	if err != nil {
		return ingest.Options{}, fmt.Errorf("invalid timezone %q: %w", c.Input.Timezone, err)
	}

	opts := ingest.Options{
		Format:           c.Input.Format,
		Sheet:            c.Input.Sheet,
		CreatedColumn:    c.Input.CreatedColumn,
		DeliveredColumn:  c.Input.DeliveredColumn,
		TimestampLayouts: c.Input.TimestampLayouts,
		Location:         loc,
	}
	switch c.Input.Delimiter {
	case "":
	case `\t`, "tab":
		opts.Delimiter = '\t'
	default:
		opts.Delimiter, _ = utf8.DecodeRuneInString(c.Input.Delimiter)
	}
	return opts, nil
}

// WantsCleaned reports whether a cleaned-table format is enabled
func (c *Config) WantsCleaned(format string) bool {
	return contains(c.Output.Cleaned, format)
}

// WriteDefault writes the default configuration as YAML
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content := "# leadtime configuration\n# Every key can be overridden with LEADTIME_<SECTION>_<KEY>, e.g. LEADTIME_INPUT_PATH.\n" + string(data)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
