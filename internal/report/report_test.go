package report

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/leadtime/internal/aggregate"
	"github.com/psantana5/leadtime/internal/ingest"
	"github.com/psantana5/leadtime/internal/pipeline"
	"github.com/psantana5/leadtime/pkg/logging"
	"github.com/psantana5/leadtime/pkg/models"
)

func order(row int, created string, hours float64) models.Order {
	c, err := time.ParseInLocation("2006-01-02 15:04", created, time.UTC)
	if err != nil {
		panic(err)
	}
	d := c.Add(time.Duration(hours * float64(time.Hour)))
	return models.Order{Row: row, CreatedAt: c, DeliveredAt: &d}
}

func buildSummary(t *testing.T, lateSamples int) (*Summary, *pipeline.Table) {
	t.Helper()

	orders := []models.Order{
		order(1, "2024-01-05 10:00", 2.5),  // morning, met
		order(2, "2024-01-05 17:00", 17),   // afternoon, 26h adjusted, late
		order(3, "2024-01-05 11:00", 30),   // out of scope, late
		order(4, "2024-01-06 09:00", 1),    // morning, met
		order(5, "2024-01-06 13:00", 3),    // morning, met
		{Row: 6, CreatedAt: time.Date(2024, 1, 6, 14, 0, 0, 0, time.UTC)}, // missing delivery
	}

	table, err := pipeline.Run(context.Background(), orders, models.DefaultRules())
	require.NoError(t, err)

	agg, err := aggregate.Compute(table, aggregate.Options{})
	require.NoError(t, err)

	start := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	stats := ingest.Stats{Rows: 6, MissingDelivery: 1}
	return NewSummary("orders.csv", start, start.Add(1500*time.Millisecond), stats, table, agg, lateSamples), table
}

func TestNewSummary(t *testing.T) {
	s, table := buildSummary(t, 5)

	assert.NotEmpty(t, s.RunID)
	assert.Equal(t, 1500*time.Millisecond, s.Duration)
	assert.Equal(t, 5, s.Orders)
	assert.Equal(t, 1, s.DroppedMissingDelivery)
	assert.Equal(t, table.Cap, s.CapHours)
	assert.Equal(t, 2, s.Overall.Late)
	assert.Equal(t, 4, s.Overall.InScope)
	assert.Len(t, s.Daily, 2)
	assert.NotEmpty(t, s.Findings)

	require.Len(t, s.LateSamples, 2)
	for i := 1; i < len(s.LateSamples); i++ {
		assert.GreaterOrEqual(t, s.LateSamples[i-1].LeadTimeHours, s.LateSamples[i].LeadTimeHours)
	}
}

func TestSummaryIDsAreUnique(t *testing.T) {
	a, _ := buildSummary(t, 0)
	b, _ := buildSummary(t, 0)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Empty(t, a.LateSamples)
}

func TestFindings(t *testing.T) {
	s, _ := buildSummary(t, 0)
	text := strings.Join(s.Findings, "\n")

	assert.Contains(t, text, "5 orders analysed; 1 dropped")
	assert.Contains(t, text, "60.0% of orders were delivered within 4 hours")
	assert.Contains(t, text, "SLA met for 75.0% of 4 in-scope orders; 1 orders fall outside both SLA windows")
	assert.Contains(t, text, "capped at the P95 value")
	assert.Contains(t, text, "Worst day was 2024-01-05")
	assert.Contains(t, text, "best day was 2024-01-06")
}

func TestFindingsWithoutScope(t *testing.T) {
	s := &Summary{
		Rules:   models.DefaultRules(),
		Orders:  1,
		Overall: aggregate.Overall{Orders: 1, Late: 1, LateRatio: 1},
	}
	findings := Findings(s)
	assert.Contains(t, strings.Join(findings, "\n"), "No order falls inside an SLA window")
}

func TestWriteFindings(t *testing.T) {
	s, _ := buildSummary(t, 2)
	path := filepath.Join(t.TempDir(), "findings.md")
	require.NoError(t, WriteFindings(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Delivery lead time findings")
	assert.Contains(t, string(data), "## Slowest late orders")
	assert.Contains(t, string(data), s.RunID)
}

func TestLateLogKeepsSlowest(t *testing.T) {
	log := NewLateLog(2)
	for i, h := range []float64{5, 9, 2, 7, 30} {
		log.Record(models.Record{Row: i + 1, LeadTimeHours: h, OnTime: models.Late})
	}
	log.Record(models.Record{Row: 99, LeadTimeHours: 100, OnTime: models.OnTime})

	assert.Equal(t, 5, log.Count())
	slowest := log.Slowest(0)
	require.Len(t, slowest, 2)
	assert.Equal(t, 30.0, slowest[0].LeadTimeHours)
	assert.Equal(t, 9.0, slowest[1].LeadTimeHours)

	assert.Len(t, log.Slowest(1), 1)
}

func TestLateLogZeroSize(t *testing.T) {
	log := NewLateLog(0)
	log.Record(models.Record{LeadTimeHours: 10, OnTime: models.Late})
	assert.Equal(t, 1, log.Count())
	assert.Empty(t, log.Slowest(5))
}

func gatherValue(t *testing.T, families []*dto.MetricFamily, name string, labels map[string]string) float64 {
	t.Helper()
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m.GetLabel(), labels) {
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	if len(pairs) != len(want) {
		return false
	}
	for _, p := range pairs {
		if want[p.GetName()] != p.GetValue() {
			return false
		}
	}
	return true
}

func TestMetricsObserve(t *testing.T) {
	s, table := buildSummary(t, 0)
	m := NewMetrics()
	m.Observe(s, table.Records)

	families, err := m.Registry().Gather()
	require.NoError(t, err)

	assert.Equal(t, 3.0, gatherValue(t, families, "leadtime_orders", map[string]string{"status": "on_time"}))
	assert.Equal(t, 2.0, gatherValue(t, families, "leadtime_orders", map[string]string{"status": "late"}))
	assert.Equal(t, 1.0, gatherValue(t, families, "leadtime_sla_orders", map[string]string{"status": "out_of_scope"}))
	assert.InDelta(t, 0.75, gatherValue(t, families, "leadtime_ratio", map[string]string{"kind": "sla_met"}), 1e-9)
	assert.Equal(t, 1.0, gatherValue(t, families, "leadtime_dropped_rows", nil))
	assert.InDelta(t, 1.0, gatherValue(t, families, "leadtime_daily_sla_met_ratio", map[string]string{"date": "2024-01-06"}), 1e-9)

	for _, mf := range families {
		if mf.GetName() == "leadtime_lead_time_hours" {
			assert.Equal(t, dto.MetricType_HISTOGRAM, mf.GetType())
			assert.Equal(t, uint64(5), mf.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
}

func TestPrometheusExportAndTextfile(t *testing.T) {
	s, table := buildSummary(t, 0)
	m := NewMetrics()
	m.Observe(s, table.Records)

	data, err := PrometheusExport(m.Registry())
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "# TYPE leadtime_orders gauge")
	assert.Contains(t, text, `leadtime_orders{status="late"} 2`)
	assert.Contains(t, text, `leadtime_hourly_orders{hour="10"} 1`)

	path := filepath.Join(t.TempDir(), "textfile", "leadtime.prom")
	require.NoError(t, WriteTextfile(path, m.Registry()))
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(onDisk), "leadtime_outlier_cap_hours")
}

func TestRenderFormats(t *testing.T) {
	s, table := buildSummary(t, 3)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, s, FormatTable))
	assert.Contains(t, buf.String(), "Mean Lead Time (h)")
	assert.Contains(t, buf.String(), "2024-01-05")
	assert.Contains(t, buf.String(), "Findings")

	buf.Reset()
	require.NoError(t, Render(&buf, s, FormatJSON))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, s.RunID, decoded["run_id"])

	buf.Reset()
	require.NoError(t, Render(&buf, s, FormatYAML))
	var fromYAML map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, "orders.csv", fromYAML["input"])

	assert.Error(t, Render(&buf, s, "xml"))

	buf.Reset()
	require.NoError(t, RenderDescription(&buf, s.Describe, FormatTable))
	assert.Contains(t, buf.String(), models.ColumnRawLeadTime)

	buf.Reset()
	require.NoError(t, RenderRecords(&buf, table.Records, FormatJSON))
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	assert.Len(t, rows, 5)
}

func TestLogSummary(t *testing.T) {
	s, _ := buildSummary(t, 0)
	var buf bytes.Buffer
	logger := logging.NewLogger(logging.INFO, false)
	logger.SetOutput(&buf)

	s.LogSummary(logger)
	assert.Contains(t, buf.String(), "RUN "+s.RunID)
	assert.Contains(t, buf.String(), "orders=5")
}
