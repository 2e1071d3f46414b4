package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/psantana5/leadtime/pkg/logging"
	"github.com/psantana5/leadtime/pkg/models"
	"github.com/psantana5/leadtime/pkg/tracing"
)

// Table is the cleaned and classified dataset produced by one run.
// It is never mutated after Run returns.
type Table struct {
	Records []models.Record
	Rules   models.Rules

	InputRows              int
	DroppedMissingDelivery int

	Cap        float64 // OutlierQuantile of the raw lead times
	CappedRows int
}

// Len returns the number of retained rows
func (t *Table) Len() int {
	return len(t.Records)
}

// InScope returns the records admitted by an SLA eligibility window
func (t *Table) InScope() []models.Record {
	out := make([]models.Record, 0, len(t.Records))
	for _, r := range t.Records {
		if r.InScope() {
			out = append(out, r)
		}
	}
	return out
}

// Pipeline runs the stages with logging and tracing around each one
type Pipeline struct {
	rules  models.Rules
	logger *logging.Logger
	tracer *tracing.Provider
}

// New creates a pipeline. Nil logger or tracer fall back to no-op versions.
func New(rules models.Rules, logger *logging.Logger, tracer *tracing.Provider) (*Pipeline, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &Pipeline{rules: rules, logger: logger, tracer: tracer}, nil
}

// Run executes drop-missing, lead time, outlier cap and classification in
// that order and returns the resulting table
func (p *Pipeline) Run(ctx context.Context, orders []models.Order) (*Table, error) {
	table := &Table{Rules: p.rules, InputRows: len(orders)}

	var kept []models.Order
	_ = p.tracer.Stage(ctx, "drop_missing", func(ctx context.Context) error {
		kept, table.DroppedMissingDelivery = DropMissing(orders)
		tracing.SetAttributes(ctx,
			attribute.Int("rows.in", len(orders)),
			attribute.Int("rows.dropped", table.DroppedMissingDelivery))
		return nil
	})
	p.logger.Info("Dropped orders without delivery timestamp", logging.Fields{
		"input_rows": len(orders),
		"dropped":    table.DroppedMissingDelivery,
		"kept":       len(kept),
	})

	if len(kept) == 0 {
		return nil, &models.InsufficientDataError{Stage: "outlier cap", Rows: 0}
	}

	var records []models.Record
	err := p.tracer.Stage(ctx, "lead_time", func(ctx context.Context) error {
		var err error
		records, err = ComputeLeadTimes(kept, p.rules)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("lead time stage failed: %w", err)
	}

	err = p.tracer.Stage(ctx, "cap_outliers", func(ctx context.Context) error {
		var err error
		records, table.Cap, table.CappedRows, err = CapOutliers(records, p.rules.OutlierQuantile)
		tracing.SetAttributes(ctx,
			attribute.Float64("cap.hours", table.Cap),
			attribute.Int("cap.rows", table.CappedRows))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("outlier stage failed: %w", err)
	}
	p.logger.Info("Capped lead time outliers", logging.Fields{
		"quantile":    p.rules.OutlierQuantile,
		"cap_hours":   fmt.Sprintf("%.2f", table.Cap),
		"capped_rows": table.CappedRows,
	})

	_ = p.tracer.Stage(ctx, "classify", func(ctx context.Context) error {
		table.Records = Classify(records, p.rules)
		return nil
	})
	p.logger.Info("Classified orders", logging.Fields{
		"rows":     len(table.Records),
		"in_scope": len(table.InScope()),
	})

	return table, nil
}

// Run is a convenience wrapper that runs the stages without logging or tracing
func Run(ctx context.Context, orders []models.Order, rules models.Rules) (*Table, error) {
	p, err := New(rules, nil, nil)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, orders)
}
