package report

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/psantana5/leadtime/internal/aggregate"
)

// Findings turns a summary into short plain-language statements
func Findings(s *Summary) []string {
	o := s.Overall
	out := []string{
		fmt.Sprintf("%d orders analysed; %d dropped for a missing delivery timestamp.",
			s.Orders, s.DroppedMissingDelivery),
		fmt.Sprintf("%s of orders were delivered within %s hours (mean lead time %.2fh, mean raw delivery time %.2fh).",
			pct(o.OnTimeRatio), trimFloat(s.Rules.SLAThresholdHours), o.MeanLeadTimeHours, o.MeanDeliveryHours),
	}

	if o.InScope == 0 {
		out = append(out, "No order falls inside an SLA window, so no SLA rate is reported.")
	} else {
		out = append(out, fmt.Sprintf("SLA met for %s of %d in-scope orders; %d orders fall outside both SLA windows.",
			pct(o.SLAMetRatio), o.InScope, o.Orders-o.InScope))
	}

	out = append(out, fmt.Sprintf("Lead times were capped at the P%s value of %.2fh; %d rows were clamped.",
		trimFloat(s.Rules.OutlierQuantile*100), s.CapHours, s.CappedRows))

	if worst, best, ok := extremeDays(s.Daily); ok && worst.Label != best.Label {
		out = append(out, fmt.Sprintf("Worst day was %s with %s SLA met; best day was %s with %s.",
			worst.Label, pct(worst.SLAMetRatio), best.Label, pct(best.SLAMetRatio)))
	}

	if slow, ok := slowestBucket(s.Hourly); ok {
		out = append(out, fmt.Sprintf("Orders created at %s:00 are the slowest, averaging %.2fh.",
			slow.Label, slow.MeanLeadTimeHours))
	}
	return out
}

// extremeDays returns the days with the lowest and highest SLA met ratio,
// ignoring days with no in-scope order
func extremeDays(days []aggregate.Bucket) (worst, best aggregate.Bucket, ok bool) {
	for _, d := range days {
		if d.InScope == 0 {
			continue
		}
		if !ok {
			worst, best, ok = d, d, true
			continue
		}
		if d.SLAMetRatio < worst.SLAMetRatio {
			worst = d
		}
		if d.SLAMetRatio > best.SLAMetRatio {
			best = d
		}
	}
	return worst, best, ok
}

func slowestBucket(buckets []aggregate.Bucket) (aggregate.Bucket, bool) {
	var slow aggregate.Bucket
	found := false
	for _, b := range buckets {
		if b.Orders == 0 {
			continue
		}
		if !found || b.MeanLeadTimeHours > slow.MeanLeadTimeHours {
			slow, found = b, true
		}
	}
	return slow, found
}

// WriteFindings writes the findings as a markdown document
func WriteFindings(path string, s *Summary) error {
	var b strings.Builder
	b.WriteString("# Delivery lead time findings\n\n")
	fmt.Fprintf(&b, "Run `%s` over `%s`, generated %s.\n\n", s.RunID, s.Input, s.EndTime.UTC().Format("2006-01-02 15:04:05 MST"))
	for _, f := range s.Findings {
		fmt.Fprintf(&b, "- %s\n", f)
	}

	if len(s.LateSamples) > 0 {
		b.WriteString("\n## Slowest late orders\n\n")
		b.WriteString("| Row | Created | Delivered | Lead time (h) | Window |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, l := range s.LateSamples {
			fmt.Fprintf(&b, "| %d | %s | %s | %.2f | %s |\n",
				l.Row, l.CreatedAt.Format("2006-01-02 15:04"), l.DeliveredAt.Format("2006-01-02 15:04"),
				l.LeadTimeHours, l.Window)
		}
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write findings %s: %w", path, err)
	}
	return nil
}

func pct(r float64) string {
	return fmt.Sprintf("%.1f%%", r*100)
}

func trimFloat(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
