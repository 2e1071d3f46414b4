package aggregate

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/psantana5/leadtime/internal/pipeline"
	"github.com/psantana5/leadtime/pkg/models"
)

// Stats is a descriptive summary of one column. Std is the sample standard
// deviation and is reported as 0 for fewer than two values.
type Stats struct {
	Count int     `json:"count" yaml:"count"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Std   float64 `json:"std" yaml:"std"`
	Min   float64 `json:"min" yaml:"min"`
	P25   float64 `json:"p25" yaml:"p25"`
	P50   float64 `json:"p50" yaml:"p50"`
	P75   float64 `json:"p75" yaml:"p75"`
	Max   float64 `json:"max" yaml:"max"`
}

// Description summarizes the capped lead time and the raw delivery duration
type Description struct {
	LeadTimeHours    Stats `json:"lead_time_hours" yaml:"lead_time_hours"`
	RawLeadTimeHours Stats `json:"raw_lead_time_hours" yaml:"raw_lead_time_hours"`
	DeliveryHours    Stats `json:"delivery_hours" yaml:"delivery_hours"`
}

// Describe computes count, mean, std, min, quartiles and max of values.
// Quartiles use the same interpolation as the outlier cap.
func Describe(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, &models.InsufficientDataError{Stage: "describe", Rows: 0}
	}

	qs, err := pipeline.Quantiles(values, 0.25, 0.5, 0.75)
	if err != nil {
		return Stats{}, err
	}

	s := Stats{
		Count: len(values),
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		P25:   qs[0],
		P50:   qs[1],
		P75:   qs[2],
		Max:   floats.Max(values),
	}
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	return s, nil
}

// DescribeRecords describes the lead time columns of a classified table
func DescribeRecords(records []models.Record) (Description, error) {
	lead := make([]float64, len(records))
	raw := make([]float64, len(records))
	delivery := make([]float64, len(records))
	for i, r := range records {
		lead[i] = r.LeadTimeHours
		raw[i] = r.RawLeadTimeHours
		delivery[i] = r.DeliveryHours
	}

	var d Description
	var err error
	if d.LeadTimeHours, err = Describe(lead); err != nil {
		return Description{}, err
	}
	if d.RawLeadTimeHours, err = Describe(raw); err != nil {
		return Description{}, err
	}
	if d.DeliveryHours, err = Describe(delivery); err != nil {
		return Description{}, err
	}
	return d, nil
}
