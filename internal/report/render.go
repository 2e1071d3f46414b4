package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/leadtime/internal/aggregate"
	"github.com/psantana5/leadtime/pkg/models"
)

// Output formats accepted by the Render functions
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Render writes the summary to w in the requested format
func Render(w io.Writer, s *Summary, format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		return encode(w, s, format)
	case FormatTable, "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	o := s.Overall
	fmt.Fprintf(w, "Run %s (%s)\n\n", s.RunID, s.Input)

	table := tablewriter.NewWriter(w)
	table.Header("Metric", "Value")
	table.Append("Orders", strconv.Itoa(s.Orders))
	table.Append("Dropped (missing delivery)", strconv.Itoa(s.DroppedMissingDelivery))
	table.Append("Mean Delivery Time (h)", hours(o.MeanDeliveryHours))
	table.Append("Mean Lead Time (h)", hours(o.MeanLeadTimeHours))
	table.Append("On Time", fmt.Sprintf("%d (%s)", o.OnTime, pct(o.OnTimeRatio)))
	table.Append("Late", fmt.Sprintf("%d (%s)", o.Late, pct(o.LateRatio)))
	table.Append("In SLA Scope", strconv.Itoa(o.InScope))
	table.Append("SLA Met", fmt.Sprintf("%d (%s)", o.SLAMet, pct(o.SLAMetRatio)))
	table.Append("SLA Not Met", fmt.Sprintf("%d (%s)", o.SLANotMet, pct(o.SLANotMetRatio)))
	table.Append("Outlier Cap (h)", hours(s.CapHours))
	table.Append("Capped Rows", strconv.Itoa(s.CappedRows))
	for _, st := range s.Stages {
		table.Append("Stage "+st.Name, fmt.Sprintf("%.3fs", st.Seconds))
	}
	table.Render()

	fmt.Fprintln(w, "\nDaily")
	renderBuckets(w, "Date", s.Daily)

	fmt.Fprintln(w, "\nHourly")
	renderBuckets(w, "Hour", s.Hourly)

	if len(s.LateSamples) > 0 {
		fmt.Fprintln(w, "\nSlowest late orders")
		table := tablewriter.NewWriter(w)
		table.Header("Row", "Created", "Delivered", "Lead Time (h)", "Window")
		for _, l := range s.LateSamples {
			table.Append(
				strconv.Itoa(l.Row),
				l.CreatedAt.Format("2006-01-02 15:04"),
				l.DeliveredAt.Format("2006-01-02 15:04"),
				hours(l.LeadTimeHours),
				string(l.Window),
			)
		}
		table.Render()
	}

	fmt.Fprintln(w, "\nFindings")
	for _, f := range s.Findings {
		fmt.Fprintf(w, "  - %s\n", f)
	}
	return nil
}

func renderBuckets(w io.Writer, label string, buckets []aggregate.Bucket) {
	table := tablewriter.NewWriter(w)
	table.Header(label, "Orders", "Mean Lead Time (h)", "On Time", "In Scope", "SLA Met", "SLA Not Met")
	for _, b := range buckets {
		table.Append(
			b.Label,
			strconv.Itoa(b.Orders),
			hours(b.MeanLeadTimeHours),
			pct(b.OnTimeRatio),
			strconv.Itoa(b.InScope),
			pct(b.SLAMetRatio),
			pct(b.SLANotMetRatio),
		)
	}
	table.Render()
}

// RenderDescription writes descriptive statistics of the lead time columns
func RenderDescription(w io.Writer, d aggregate.Description, format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		return encode(w, d, format)
	case FormatTable, "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max")
	for _, c := range []struct {
		name string
		s    aggregate.Stats
	}{
		{models.ColumnLeadTime, d.LeadTimeHours},
		{models.ColumnRawLeadTime, d.RawLeadTimeHours},
		{models.ColumnDeliveryHours, d.DeliveryHours},
	} {
		table.Append(
			c.name,
			strconv.Itoa(c.s.Count),
			hours(c.s.Mean),
			hours(c.s.Std),
			hours(c.s.Min),
			hours(c.s.P25),
			hours(c.s.P50),
			hours(c.s.P75),
			hours(c.s.Max),
		)
	}
	table.Render()
	return nil
}

// RenderRecords writes the per-row derived table
func RenderRecords(w io.Writer, records []models.Record, format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		if records == nil {
			records = []models.Record{}
		}
		return encode(w, records, format)
	case FormatTable, "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Row", "Created", "Delivered", models.ColumnLeadTime, models.ColumnOnTime, models.ColumnSLAWindow, models.ColumnSLA)
	for _, r := range records {
		lead := hours(r.LeadTimeHours)
		if r.Capped {
			lead += "*"
		}
		table.Append(
			strconv.Itoa(r.Row),
			r.CreatedAt.Format("2006-01-02 15:04"),
			r.DeliveredAt.Format("2006-01-02 15:04"),
			lead,
			string(r.OnTime),
			string(r.Window),
			string(r.SLA),
		)
	}
	table.Render()
	return nil
}

func encode(w io.Writer, v interface{}, format string) error {
	if format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}
