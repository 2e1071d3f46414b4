package aggregate

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/psantana5/leadtime/internal/pipeline"
	"github.com/psantana5/leadtime/pkg/models"
)

// Overall holds the dataset-wide scalar metrics
type Overall struct {
	Orders            int     `json:"orders" yaml:"orders"`
	MeanDeliveryHours float64 `json:"mean_delivery_hours" yaml:"mean_delivery_hours"` // unadjusted
	MeanLeadTimeHours float64 `json:"mean_lead_time_hours" yaml:"mean_lead_time_hours"`

	OnTime      int     `json:"on_time" yaml:"on_time"`
	Late        int     `json:"late" yaml:"late"`
	OnTimeRatio float64 `json:"on_time_ratio" yaml:"on_time_ratio"`
	LateRatio   float64 `json:"late_ratio" yaml:"late_ratio"`

	InScope        int     `json:"in_scope" yaml:"in_scope"`
	SLAMet         int     `json:"sla_met" yaml:"sla_met"`
	SLANotMet      int     `json:"sla_not_met" yaml:"sla_not_met"`
	SLAMetRatio    float64 `json:"sla_met_ratio" yaml:"sla_met_ratio"`
	SLANotMetRatio float64 `json:"sla_not_met_ratio" yaml:"sla_not_met_ratio"`
}

// Bucket is one point of a daily or hourly series. SLA fields only count
// in-scope records; a bucket with no in-scope record reports zeros.
type Bucket struct {
	Label             string  `json:"label" yaml:"label"`
	Orders            int     `json:"orders" yaml:"orders"`
	MeanLeadTimeHours float64 `json:"mean_lead_time_hours" yaml:"mean_lead_time_hours"`
	OnTimeRatio       float64 `json:"on_time_ratio" yaml:"on_time_ratio"`
	LateRatio         float64 `json:"late_ratio" yaml:"late_ratio"`

	InScope        int     `json:"in_scope" yaml:"in_scope"`
	SLAMet         int     `json:"sla_met" yaml:"sla_met"`
	SLANotMet      int     `json:"sla_not_met" yaml:"sla_not_met"`
	SLAMetRatio    float64 `json:"sla_met_ratio" yaml:"sla_met_ratio"`
	SLANotMetRatio float64 `json:"sla_not_met_ratio" yaml:"sla_not_met_ratio"`
}

// Options tunes series construction
type Options struct {
	// FillHours emits all 24 hours, with zero rows for hours absent from the data
	FillHours bool
}

// Report bundles every aggregate of one table
type Report struct {
	Overall  Overall     `json:"overall" yaml:"overall"`
	Daily    []Bucket    `json:"daily" yaml:"daily"`
	Hourly   []Bucket    `json:"hourly" yaml:"hourly"`
	Describe Description `json:"describe" yaml:"describe"`
}

// Compute builds every aggregate from a classified table
func Compute(table *pipeline.Table, opts Options) (*Report, error) {
	overall, err := ComputeOverall(table.Records)
	if err != nil {
		return nil, err
	}
	desc, err := DescribeRecords(table.Records)
	if err != nil {
		return nil, err
	}
	return &Report{
		Overall:  overall,
		Daily:    Daily(table.Records),
		Hourly:   Hourly(table.Records, opts.FillHours),
		Describe: desc,
	}, nil
}

// ComputeOverall computes the scalar metrics of the whole table
func ComputeOverall(records []models.Record) (Overall, error) {
	if len(records) == 0 {
		return Overall{}, &models.InsufficientDataError{Stage: "overall metrics", Rows: 0}
	}

	delivery := make([]float64, len(records))
	lead := make([]float64, len(records))
	var out Overall
	for i, r := range records {
		delivery[i] = r.DeliveryHours
		lead[i] = r.LeadTimeHours
		if r.OnTime == models.OnTime {
			out.OnTime++
		} else {
			out.Late++
		}
		switch r.SLA {
		case models.SLAMet:
			out.SLAMet++
		case models.SLANotMet:
			out.SLANotMet++
		}
	}

	out.Orders = len(records)
	out.MeanDeliveryHours = stat.Mean(delivery, nil)
	out.MeanLeadTimeHours = stat.Mean(lead, nil)
	out.OnTimeRatio = ratio(out.OnTime, out.Orders)
	out.LateRatio = ratio(out.Late, out.Orders)
	out.InScope = out.SLAMet + out.SLANotMet
	out.SLAMetRatio = ratio(out.SLAMet, out.InScope)
	out.SLANotMetRatio = ratio(out.SLANotMet, out.InScope)
	return out, nil
}

// Daily groups records by creation calendar date, ascending
func Daily(records []models.Record) []Bucket {
	groups := make(map[string][]models.Record)
	for _, r := range records {
		key := r.DateCreated()
		groups[key] = append(groups[key], r)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, bucket(k, groups[k]))
	}
	return out
}

// Hourly groups records by creation hour-of-day, ascending
func Hourly(records []models.Record, fillHours bool) []Bucket {
	var groups [24][]models.Record
	var present [24]bool
	for _, r := range records {
		h := r.HourCreated()
		groups[h] = append(groups[h], r)
		present[h] = true
	}

	out := make([]Bucket, 0, 24)
	for h := 0; h < 24; h++ {
		if !present[h] && !fillHours {
			continue
		}
		out = append(out, bucket(fmt.Sprintf("%02d", h), groups[h]))
	}
	return out
}

func bucket(label string, records []models.Record) Bucket {
	b := Bucket{Label: label, Orders: len(records)}
	if len(records) == 0 {
		return b
	}

	lead := make([]float64, len(records))
	onTime := 0
	for i, r := range records {
		lead[i] = r.LeadTimeHours
		if r.OnTime == models.OnTime {
			onTime++
		}
		switch r.SLA {
		case models.SLAMet:
			b.SLAMet++
		case models.SLANotMet:
			b.SLANotMet++
		}
	}

	b.MeanLeadTimeHours = stat.Mean(lead, nil)
	b.OnTimeRatio = ratio(onTime, b.Orders)
	b.LateRatio = ratio(b.Orders-onTime, b.Orders)
	b.InScope = b.SLAMet + b.SLANotMet
	b.SLAMetRatio = ratio(b.SLAMet, b.InScope)
	b.SLANotMetRatio = ratio(b.SLANotMet, b.InScope)
	return b
}

// ratio returns n/d, or 0 for an empty denominator
func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
