package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/leadtime/pkg/models"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, models.DefaultRules(), cfg.Rules)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.True(t, cfg.WantsCleaned("csv"))
	assert.False(t, cfg.WantsCleaned("sqlite"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadtime.yaml")
	content := `
input:
  path: orders.xlsx
  sheet: Orders
  delimiter: ";"
rules:
  cutoff_hour: 15
  sla_threshold_hours: 6
output:
  format: json
  cleaned: [csv, sqlite]
  fill_hours: true
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "orders.xlsx", cfg.Input.Path)
	assert.Equal(t, "Orders", cfg.Input.Sheet)
	assert.Equal(t, 15, cfg.Rules.CutoffHour)
	assert.Equal(t, 6.0, cfg.Rules.SLAThresholdHours)
	assert.Equal(t, 8, cfg.Rules.NextDayStartHour, "unset keys keep defaults")
	assert.Equal(t, 0.95, cfg.Rules.OutlierQuantile)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, []string{"csv", "sqlite"}, cfg.Output.Cleaned)
	assert.True(t, cfg.Output.FillHours)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, models.ColumnCreatedAt, cfg.Input.CreatedColumn)

	opts, err := cfg.IngestOptions()
	require.NoError(t, err)
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, "Orders", opts.Sheet)
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  cutoff_hour: 15\n"), 0644))

	t.Setenv("LEADTIME_RULES_CUTOFF_HOUR", "17")
	t.Setenv("LEADTIME_INPUT_PATH", "/data/orders.csv")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 17, cfg.Rules.CutoffHour)
	assert.Equal(t, "/data/orders.csv", cfg.Input.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leadtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  outlier_quantile: 1.5\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Cutoff out of range", func(c *Config) { c.Rules.CutoffHour = 24 }},
		{"Zero threshold", func(c *Config) { c.Rules.SLAThresholdHours = 0 }},
		{"Unknown input format", func(c *Config) { c.Input.Format = "parquet" }},
		{"Long delimiter", func(c *Config) { c.Input.Delimiter = "||" }},
		{"Bad timezone", func(c *Config) { c.Input.Timezone = "Mars/Olympus" }},
		{"Unknown output format", func(c *Config) { c.Output.Format = "xml" }},
		{"Unknown cleaned format", func(c *Config) { c.Output.Cleaned = []string{"parquet"} }},
		{"Negative late samples", func(c *Config) { c.Output.LateSamples = -1 }},
		{"Tracing without endpoint", func(c *Config) { c.Tracing.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIngestOptionsTabDelimiter(t *testing.T) {
	cfg := Default()
	cfg.Input.Delimiter = `\t`
	opts, err := cfg.IngestOptions()
	require.NoError(t, err)
	assert.Equal(t, '\t', opts.Delimiter)
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
