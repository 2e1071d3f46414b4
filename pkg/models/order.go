package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date key used by daily series and exports
const DateLayout = "2006-01-02"

// OnTimeStatus is the lead-time verdict for a single order
type OnTimeStatus string

const (
	OnTime OnTimeStatus = "On Time"
	Late   OnTimeStatus = "Late"
)

// SLAStatus is the SLA verdict for an order inside an eligibility window.
// Orders outside every window carry SLANotApplicable.
type SLAStatus string

const (
	SLAMet           SLAStatus = "Met"
	SLANotMet        SLAStatus = "Not Met"
	SLANotApplicable SLAStatus = ""
)

// SLAWindow tags which eligibility window admitted an order into SLA analysis
type SLAWindow string

const (
	// WindowNone means the order is out of scope for SLA aggregates
	WindowNone SLAWindow = "none"
	// WindowMorning: created before the cutoff hour, delivered the same calendar date
	WindowMorning SLAWindow = "morning"
	// WindowAfternoon: created at or after the cutoff hour, delivered no later
	// than the afternoon deadline on the following calendar date
	WindowAfternoon SLAWindow = "afternoon"
)

// InScope reports whether the window participates in SLA aggregates
func (w SLAWindow) InScope() bool {
	return w == WindowMorning || w == WindowAfternoon
}

// Order is one input row after parsing. DeliveredAt is nil when the
// delivery cell was empty.
type Order struct {
	Row         int               `json:"row"` // 1-based data row in the source file
	CreatedAt   time.Time         `json:"created_at"`
	DeliveredAt *time.Time        `json:"delivered_at,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"` // passthrough columns
}

// Delivered reports whether the order has a delivery timestamp
func (o Order) Delivered() bool {
	return o.DeliveredAt != nil
}

// Record is an order with every derived field computed. Records are
// produced once by the pipeline and never mutated afterwards.
type Record struct {
	Row         int               `json:"row" yaml:"row"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
	DeliveredAt time.Time         `json:"delivered_at" yaml:"delivered_at"`
	Extra       map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`

	DeliveryHours    float64 `json:"delivery_hours" yaml:"delivery_hours"` // unadjusted delivered - created
	RawLeadTimeHours float64 `json:"raw_lead_time_hours" yaml:"raw_lead_time_hours"`
	LeadTimeHours    float64 `json:"lead_time_hours" yaml:"lead_time_hours"` // after outlier cap
	Adjusted         bool    `json:"adjusted" yaml:"adjusted"`               // after-cutoff carry-over applied
	Capped           bool    `json:"capped" yaml:"capped"`

	OnTime OnTimeStatus `json:"on_time" yaml:"on_time"`
	Window SLAWindow    `json:"sla_window" yaml:"sla_window"`
	SLA    SLAStatus    `json:"sla,omitempty" yaml:"sla,omitempty"`
}

// HourCreated returns the hour-of-day the order was created
func (r Record) HourCreated() int {
	return r.CreatedAt.Hour()
}

// DateCreated returns the calendar date the order was created
func (r Record) DateCreated() string {
	return r.CreatedAt.Format(DateLayout)
}

// InScope reports whether the record participates in SLA aggregates
func (r Record) InScope() bool {
	return r.Window.InScope()
}

// Rules holds the business constants of the lead-time and SLA computations
type Rules struct {
	CutoffHour            int     `yaml:"cutoff_hour" json:"cutoff_hour" mapstructure:"cutoff_hour"`
	NextDayStartHour      int     `yaml:"next_day_start_hour" json:"next_day_start_hour" mapstructure:"next_day_start_hour"`
	AfternoonDeadlineHour int     `yaml:"afternoon_deadline_hour" json:"afternoon_deadline_hour" mapstructure:"afternoon_deadline_hour"`
	SLAThresholdHours     float64 `yaml:"sla_threshold_hours" json:"sla_threshold_hours" mapstructure:"sla_threshold_hours"`
	OutlierQuantile       float64 `yaml:"outlier_quantile" json:"outlier_quantile" mapstructure:"outlier_quantile"`
}

// DefaultRules returns the rules used by the delivery report:
// 4 PM cutoff, 08:00 next-day start, noon next-day deadline for afternoon
// orders, a 4 hour SLA and a 95th percentile outlier cap.
func DefaultRules() Rules {
	return Rules{
		CutoffHour:            16,
		NextDayStartHour:      8,
		AfternoonDeadlineHour: 12,
		SLAThresholdHours:     4,
		OutlierQuantile:       0.95,
	}
}

// Validate checks that every rule is inside its domain
func (r Rules) Validate() error {
	for name, h := range map[string]int{
		"cutoff_hour":             r.CutoffHour,
		"next_day_start_hour":     r.NextDayStartHour,
		"afternoon_deadline_hour": r.AfternoonDeadlineHour,
	} {
		if h < 0 || h > 23 {
			return fmt.Errorf("%s must be between 0 and 23, got %d", name, h)
		}
	}
	if r.SLAThresholdHours <= 0 {
		return fmt.Errorf("sla_threshold_hours must be positive, got %v", r.SLAThresholdHours)
	}
	if r.OutlierQuantile <= 0 || r.OutlierQuantile > 1 {
		return fmt.Errorf("outlier_quantile must be in (0, 1], got %v", r.OutlierQuantile)
	}
	return nil
}
