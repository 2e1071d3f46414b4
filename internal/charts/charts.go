// Package charts draws the PNG figures of a report run
package charts

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/psantana5/leadtime/internal/aggregate"
	"github.com/psantana5/leadtime/pkg/models"
)

// File names written by WriteAll
const (
	DailyLeadTimeFile  = "daily_mean_lead_time.png"
	HourlyLeadTimeFile = "hourly_mean_lead_time.png"
	DailySLAFile       = "daily_sla_met.png"
	HourlySLAFile      = "hourly_sla_met.png"
	HistogramFile      = "lead_time_histogram.png"
	OnTimeFile         = "on_time_vs_late.png"
)

var (
	barColor       = color.RGBA{R: 52, G: 101, B: 164, A: 255}
	lateColor      = color.RGBA{R: 204, G: 0, B: 0, A: 255}
	thresholdColor = color.RGBA{R: 78, G: 154, B: 6, A: 255}
)

const (
	width  = 10 * vg.Inch
	height = 5 * vg.Inch
)

// WriteAll writes every chart into dir and returns the files written.
// Series without data are skipped.
func WriteAll(dir string, agg *aggregate.Report, records []models.Record, rules models.Rules, capHours float64) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	var written []string
	add := func(name string, draw func(path string) error) error {
		path := filepath.Join(dir, name)
		if err := draw(path); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	steps := []struct {
		name string
		skip bool
		draw func(path string) error
	}{
		{DailyLeadTimeFile, len(agg.Daily) == 0, func(p string) error { return DailyMeanLeadTime(agg.Daily, p) }},
		{HourlyLeadTimeFile, len(agg.Hourly) == 0, func(p string) error { return HourlyMeanLeadTime(agg.Hourly, p) }},
		{DailySLAFile, len(agg.Daily) == 0, func(p string) error { return SLAMet(agg.Daily, "Daily SLA met proportion", "Date created", p) }},
		{HourlySLAFile, len(agg.Hourly) == 0, func(p string) error { return SLAMet(agg.Hourly, "Hourly SLA met proportion", "Hour created", p) }},
		{HistogramFile, len(records) == 0, func(p string) error { return LeadTimeHistogram(records, rules.SLAThresholdHours, capHours, p) }},
		{OnTimeFile, agg.Overall.Orders == 0, func(p string) error { return OnTimeVsLate(agg.Overall, p) }},
	}
	for _, s := range steps {
		if s.skip {
			continue
		}
		if err := add(s.name, s.draw); err != nil {
			return written, err
		}
	}
	return written, nil
}

// DailyMeanLeadTime draws the mean lead time per creation date as a line
func DailyMeanLeadTime(days []aggregate.Bucket, path string) error {
	p := newPlot("Mean lead time by day", "Date created", "Lead time (hours)")

	points := make(plotter.XYs, len(days))
	labels := make([]string, len(days))
	for i, d := range days {
		points[i].X = float64(i)
		points[i].Y = d.MeanLeadTimeHours
		labels[i] = d.Label
	}

	line, markers, err := plotter.NewLinePoints(points)
	if err != nil {
		return fmt.Errorf("failed to build line: %w", err)
	}
	line.Color = barColor
	line.Width = vg.Points(2)
	markers.Color = barColor

	p.Add(plotter.NewGrid(), line, markers)
	p.NominalX(labels...)
	p.Y.Min = 0
	return save(p, path)
}

// HourlyMeanLeadTime draws the mean lead time per creation hour as bars
func HourlyMeanLeadTime(hours []aggregate.Bucket, path string) error {
	p := newPlot("Mean lead time by hour of creation", "Hour created", "Lead time (hours)")

	values := make(plotter.Values, len(hours))
	labels := make([]string, len(hours))
	for i, h := range hours {
		values[i] = h.MeanLeadTimeHours
		labels[i] = h.Label
	}
	if err := addBars(p, values, barColor); err != nil {
		return err
	}
	p.NominalX(labels...)
	return save(p, path)
}

// SLAMet draws the SLA met proportion of each bucket as bars on a 0..1 axis
func SLAMet(buckets []aggregate.Bucket, title, xLabel, path string) error {
	p := newPlot(title, xLabel, "SLA met proportion")

	values := make(plotter.Values, len(buckets))
	labels := make([]string, len(buckets))
	for i, b := range buckets {
		values[i] = b.SLAMetRatio
		labels[i] = b.Label
	}
	if err := addBars(p, values, thresholdColor); err != nil {
		return err
	}
	p.NominalX(labels...)
	p.Y.Min = 0
	p.Y.Max = 1
	return save(p, path)
}

// LeadTimeHistogram draws the lead time distribution with the SLA threshold
// and the outlier cap marked as vertical lines
func LeadTimeHistogram(records []models.Record, threshold, capHours float64, path string) error {
	p := newPlot("Lead time distribution", "Lead time (hours)", "Orders")

	values := make(plotter.Values, len(records))
	for i, r := range records {
		values[i] = r.LeadTimeHours
	}

	hist, err := plotter.NewHist(values, binCount(len(values)))
	if err != nil {
		return fmt.Errorf("failed to build histogram: %w", err)
	}
	hist.FillColor = barColor
	p.Add(hist)

	top := p.Y.Max
	for _, marker := range []struct {
		label string
		x     float64
		c     color.Color
	}{
		{fmt.Sprintf("SLA threshold (%.1fh)", threshold), threshold, thresholdColor},
		{fmt.Sprintf("Outlier cap (%.1fh)", capHours), capHours, lateColor},
	} {
		line, err := plotter.NewLine(plotter.XYs{{X: marker.x, Y: 0}, {X: marker.x, Y: top}})
		if err != nil {
			return fmt.Errorf("failed to build marker: %w", err)
		}
		line.Color = marker.c
		line.Width = vg.Points(2)
		line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
		p.Add(line)
		p.Legend.Add(marker.label, line)
	}
	p.Legend.Top = true
	return save(p, path)
}

// OnTimeVsLate draws the on-time and late counts side by side
func OnTimeVsLate(o aggregate.Overall, path string) error {
	p := newPlot("On time vs late orders", "", "Orders")

	onTime, err := plotter.NewBarChart(plotter.Values{float64(o.OnTime), 0}, vg.Points(40))
	if err != nil {
		return fmt.Errorf("failed to build bars: %w", err)
	}
	onTime.Color = thresholdColor
	onTime.LineStyle.Width = vg.Length(0)

	late, err := plotter.NewBarChart(plotter.Values{0, float64(o.Late)}, vg.Points(40))
	if err != nil {
		return fmt.Errorf("failed to build bars: %w", err)
	}
	late.Color = lateColor
	late.LineStyle.Width = vg.Length(0)

	p.Add(plotter.NewGrid(), onTime, late)
	p.NominalX(string(models.OnTime), string(models.Late))
	return save(p, path)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func addBars(p *plot.Plot, values plotter.Values, c color.Color) error {
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build bars: %w", err)
	}
	bars.Color = c
	bars.LineStyle.Width = vg.Length(0)
	p.Add(plotter.NewGrid(), bars)
	return nil
}

// binCount is floor(log2 n)+1, at least 5
func binCount(n int) int {
	bins := 1
	for v := n; v > 1; v /= 2 {
		bins++
	}
	if bins < 5 {
		bins = 5
	}
	return bins
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
