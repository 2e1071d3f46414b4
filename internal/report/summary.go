package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/psantana5/leadtime/internal/aggregate"
	"github.com/psantana5/leadtime/internal/ingest"
	"github.com/psantana5/leadtime/internal/observe"
	"github.com/psantana5/leadtime/internal/pipeline"
	"github.com/psantana5/leadtime/pkg/logging"
	"github.com/psantana5/leadtime/pkg/models"
)

// Summary is the immutable result of one report run. It is built once after
// the pipeline finishes and every output (render, metrics, findings) reads it.
type Summary struct {
	RunID string `json:"run_id" yaml:"run_id"`
	Input string `json:"input" yaml:"input"`

	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	EndTime   time.Time     `json:"end_time" yaml:"end_time"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration_ns"`

	Rules  models.Rules `json:"rules" yaml:"rules"`
	Ingest ingest.Stats `json:"ingest" yaml:"ingest"`

	Orders                 int     `json:"orders" yaml:"orders"`
	DroppedMissingDelivery int     `json:"dropped_missing_delivery" yaml:"dropped_missing_delivery"`
	CapHours               float64 `json:"cap_hours" yaml:"cap_hours"`
	CappedRows             int     `json:"capped_rows" yaml:"capped_rows"`

	Overall  aggregate.Overall     `json:"overall" yaml:"overall"`
	Daily    []aggregate.Bucket    `json:"daily" yaml:"daily"`
	Hourly   []aggregate.Bucket    `json:"hourly" yaml:"hourly"`
	Describe aggregate.Description `json:"describe" yaml:"describe"`

	// Stages is filled by the caller that timed the run
	Stages []observe.StageDuration `json:"stages,omitempty" yaml:"stages,omitempty"`

	Findings    []string     `json:"findings" yaml:"findings"`
	LateSamples []LateSample `json:"late_samples,omitempty" yaml:"late_samples,omitempty"`
}

// NewSummary freezes the outcome of a run. lateSamples bounds the number of
// slowest late orders kept; 0 keeps none.
func NewSummary(input string, start, end time.Time, stats ingest.Stats, table *pipeline.Table, agg *aggregate.Report, lateSamples int) *Summary {
	s := &Summary{
		RunID:                  uuid.New().String(),
		Input:                  input,
		StartTime:              start,
		EndTime:                end,
		Duration:               end.Sub(start),
		Rules:                  table.Rules,
		Ingest:                 stats,
		Orders:                 table.Len(),
		DroppedMissingDelivery: table.DroppedMissingDelivery,
		CapHours:               table.Cap,
		CappedRows:             table.CappedRows,
		Overall:                agg.Overall,
		Daily:                  agg.Daily,
		Hourly:                 agg.Hourly,
		Describe:               agg.Describe,
	}

	if lateSamples > 0 {
		late := NewLateLog(lateSamples)
		for _, r := range table.Records {
			late.Record(r)
		}
		s.LateSamples = late.Slowest(lateSamples)
	}

	s.Findings = Findings(s)
	return s
}

// LogSummary emits the one-line run summary
func (s *Summary) LogSummary(logger *logging.Logger) {
	logger.Info("RUN "+s.RunID, logging.Fields{
		"input":         s.Input,
		"orders":        s.Orders,
		"dropped":       s.DroppedMissingDelivery,
		"on_time_ratio": round(s.Overall.OnTimeRatio, 4),
		"sla_met_ratio": round(s.Overall.SLAMetRatio, 4),
		"in_scope":      s.Overall.InScope,
		"cap_hours":     round(s.CapHours, 3),
		"runtime":       s.Duration.Round(time.Millisecond).String(),
	})
}
