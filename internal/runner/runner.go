// Package runner wires ingest, the pipeline, aggregation and every output
// into the commands of the leadtime CLI
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/psantana5/leadtime/internal/aggregate"
	"github.com/psantana5/leadtime/internal/charts"
	"github.com/psantana5/leadtime/internal/config"
	"github.com/psantana5/leadtime/internal/export"
	"github.com/psantana5/leadtime/internal/ingest"
	"github.com/psantana5/leadtime/internal/observe"
	"github.com/psantana5/leadtime/internal/pipeline"
	"github.com/psantana5/leadtime/internal/report"
	"github.com/psantana5/leadtime/pkg/logging"
	"github.com/psantana5/leadtime/pkg/tracing"
)

// Output file names inside the output directory
const (
	CleanedCSVFile  = "cleaned.csv"
	CleanedXLSXFile = "cleaned.xlsx"
	SQLiteFile      = "leadtime.db"
	ChartsDir       = "charts"
)

// Runner executes report runs for one configuration
type Runner struct {
	cfg    *config.Config
	logger *logging.Logger
	tracer *tracing.Provider
	now    func() time.Time
}

// Result is everything an analyze run produced
type Result struct {
	Summary    *report.Summary
	Table      *pipeline.Table
	Aggregates *aggregate.Report
	Ingest     *ingest.Result
	Files      []string
}

// New creates a runner. Nil logger or tracer fall back to no-op versions.
func New(cfg *config.Config, logger *logging.Logger, tracer *tracing.Provider) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	if tracer == nil {
		tracer = tracing.Noop()
	}
	return &Runner{cfg: cfg, logger: logger, tracer: tracer, now: time.Now}
}

// Load reads the input table
func (r *Runner) Load(ctx context.Context, path string) (*ingest.Result, error) {
	if path == "" {
		return nil, fmt.Errorf("no input file given")
	}
	opts, err := r.cfg.IngestOptions()
	if err != nil {
		return nil, err
	}

	var res *ingest.Result
	err = r.tracer.Stage(ctx, "ingest", func(ctx context.Context) error {
		tracing.SetAttributes(ctx, attribute.String("input.path", path))
		res, err = ingest.Read(path, opts)
		if err != nil {
			return err
		}
		tracing.SetAttributes(ctx,
			attribute.Int("input.rows", res.Stats.Rows),
			attribute.Int("input.missing_delivery", res.Stats.MissingDelivery),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Input loaded", logging.Fields{
		"path":             path,
		"rows":             res.Stats.Rows,
		"missing_delivery": res.Stats.MissingDelivery,
		"blank_rows":       res.Stats.BlankRows,
	})
	return res, nil
}

// Classify loads the input and runs the pipeline
func (r *Runner) Classify(ctx context.Context, path string) (*ingest.Result, *pipeline.Table, error) {
	res, err := r.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	p, err := pipeline.New(r.cfg.Rules, r.logger, r.tracer)
	if err != nil {
		return nil, nil, err
	}
	table, err := p.Run(ctx, res.Orders)
	if err != nil {
		return nil, nil, err
	}
	return res, table, nil
}

// Analyze runs the whole report and writes every configured output
func (r *Runner) Analyze(ctx context.Context, path string) (*Result, error) {
	start := r.now()
	timeline := observe.NewTimeline(r.now)

	var res *ingest.Result
	err := timeline.Track("ingest", func() error {
		var err error
		res, err = r.Load(ctx, path)
		return err
	})
	if err != nil {
		return nil, err
	}

	var table *pipeline.Table
	err = timeline.Track("pipeline", func() error {
		p, err := pipeline.New(r.cfg.Rules, r.logger, r.tracer)
		if err != nil {
			return err
		}
		table, err = p.Run(ctx, res.Orders)
		return err
	})
	if err != nil {
		return nil, err
	}

	var agg *aggregate.Report
	err = timeline.Track("aggregate", func() error {
		return r.tracer.Stage(ctx, "aggregate", func(ctx context.Context) error {
			var err error
			agg, err = aggregate.Compute(table, aggregate.Options{FillHours: r.cfg.Output.FillHours})
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	summary := report.NewSummary(path, start, r.now(), res.Stats, table, agg, r.cfg.Output.LateSamples)
	summary.Stages = timeline.Stages()
	out := &Result{Summary: summary, Table: table, Aggregates: agg, Ingest: res}

	err = r.tracer.Stage(ctx, "write_outputs", func(ctx context.Context) error {
		files, err := r.writeOutputs(ctx, out)
		out.Files = files
		tracing.SetAttributes(ctx, attribute.Int("output.files", len(files)))
		return err
	})
	if err != nil {
		return out, err
	}

	summary.LogSummary(r.logger)
	return out, nil
}

func (r *Runner) writeOutputs(ctx context.Context, res *Result) ([]string, error) {
	o := r.cfg.Output
	if o.Dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var files []string
	records := res.Table.Records
	extra := res.Ingest.ExtraColumns

	if r.cfg.WantsCleaned("csv") {
		path := filepath.Join(o.Dir, CleanedCSVFile)
		if err := export.WriteCSVFile(path, records, extra); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if r.cfg.WantsCleaned("xlsx") {
		path := filepath.Join(o.Dir, CleanedXLSXFile)
		if err := export.WriteXLSX(path, records, extra, res.Aggregates); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if r.cfg.WantsCleaned("sqlite") {
		path := filepath.Join(o.Dir, SQLiteFile)
		if err := r.writeSQLite(ctx, path, res); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if o.Charts {
		written, err := charts.WriteAll(filepath.Join(o.Dir, ChartsDir), res.Aggregates, records, res.Table.Rules, res.Table.Cap)
		files = append(files, written...)
		if err != nil {
			return files, err
		}
	}

	if o.MetricsFile != "" {
		path := outputPath(o.Dir, o.MetricsFile)
		m := report.NewMetrics()
		m.Observe(res.Summary, records)
		if err := report.WriteTextfile(path, m.Registry()); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if o.FindingsFile != "" {
		path := outputPath(o.Dir, o.FindingsFile)
		if err := report.WriteFindings(path, res.Summary); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	for _, f := range files {
		r.logger.Debug("Output written", logging.Fields{"path": f})
	}
	return files, nil
}

func (r *Runner) writeSQLite(ctx context.Context, path string, res *Result) error {
	store, err := export.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ReplaceOrders(ctx, res.Table.Records); err != nil {
		return err
	}
	s := res.Summary
	return store.RecordRun(ctx, export.RunRecord{
		RunID:       s.RunID,
		Input:       s.Input,
		FinishedAt:  s.EndTime,
		Orders:      s.Orders,
		OnTimeRatio: s.Overall.OnTimeRatio,
		SLAMetRatio: s.Overall.SLAMetRatio,
		CapHours:    s.CapHours,
	})
}

// outputPath places relative names inside dir and keeps absolute paths
func outputPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
