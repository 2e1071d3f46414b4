package pipeline

import (
	"fmt"

	"github.com/psantana5/leadtime/pkg/models"
)

// DropMissing removes orders without a delivery timestamp
func DropMissing(orders []models.Order) (kept []models.Order, dropped int) {
	kept = make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if !o.Delivered() {
			dropped++
			continue
		}
		kept = append(kept, o)
	}
	return kept, dropped
}

// ComputeLeadTimes derives the unadjusted delivery duration and the raw
// (pre-cap) lead time of every delivered order. A delivery that precedes its
// creation is malformed input.
func ComputeLeadTimes(orders []models.Order, rules models.Rules) ([]models.Record, error) {
	records := make([]models.Record, 0, len(orders))
	for _, o := range orders {
		if o.DeliveredAt == nil {
			return nil, &models.MalformedInputError{
				Row:    o.Row,
				Column: "delivered_at",
				Reason: "missing delivery timestamp reached lead time computation",
			}
		}
		delivered := *o.DeliveredAt
		if delivered.Before(o.CreatedAt) {
			return nil, &models.MalformedInputError{
				Row:    o.Row,
				Column: "delivered_at",
				Value:  delivered.Format("2006-01-02 15:04:05"),
				Reason: fmt.Sprintf("delivered before created (%s)", o.CreatedAt.Format("2006-01-02 15:04:05")),
			}
		}

		raw, adjusted := LeadTime(o.CreatedAt, delivered, rules)
		records = append(records, models.Record{
			Row:              o.Row,
			CreatedAt:        o.CreatedAt,
			DeliveredAt:      delivered,
			Extra:            o.Extra,
			DeliveryHours:    delivered.Sub(o.CreatedAt).Hours(),
			RawLeadTimeHours: raw,
			LeadTimeHours:    raw,
			Adjusted:         adjusted,
		})
	}
	return records, nil
}

// CapOutliers clamps every lead time above the p-quantile of the raw lead
// times down to exactly that quantile. Rows are clamped, never removed.
func CapOutliers(records []models.Record, p float64) (out []models.Record, limit float64, capped int, err error) {
	if len(records) == 0 {
		return nil, 0, 0, &models.InsufficientDataError{Stage: "outlier cap", Rows: 0}
	}

	raw := make([]float64, len(records))
	for i, r := range records {
		raw[i] = r.RawLeadTimeHours
	}
	limit, err = Quantile(raw, p)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to compute outlier cap: %w", err)
	}

	out = make([]models.Record, len(records))
	for i, r := range records {
		r.LeadTimeHours = r.RawLeadTimeHours
		r.Capped = false
		if r.RawLeadTimeHours > limit {
			r.LeadTimeHours = limit
			r.Capped = true
			capped++
		}
		out[i] = r
	}
	return out, limit, capped, nil
}

// Classify sets the On Time verdict, the SLA window and the SLA verdict of
// every record from its capped lead time
func Classify(records []models.Record, rules models.Rules) []models.Record {
	out := make([]models.Record, len(records))
	for i, r := range records {
		r.OnTime = OnTimeStatus(r.LeadTimeHours, rules)
		r.Window = ClassifyWindow(r.CreatedAt, r.DeliveredAt, rules)
		r.SLA = SLAStatus(r.LeadTimeHours, r.Window, rules)
		out[i] = r
	}
	return out
}
