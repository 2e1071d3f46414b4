package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/psantana5/leadtime/pkg/models"
)

// LeadTimeBuckets are the histogram bounds, in hours, of the lead time distribution
var LeadTimeBuckets = []float64{1, 2, 4, 8, 12, 24, 48, 72}

// Metrics is the Prometheus view of one run. Every value is a projection of
// the frozen Summary and its records; nothing is accumulated across runs.
type Metrics struct {
	registry *prometheus.Registry

	orders       *prometheus.GaugeVec
	slaOrders    *prometheus.GaugeVec
	meanHours    *prometheus.GaugeVec
	ratios       *prometheus.GaugeVec
	capHours     prometheus.Gauge
	cappedRows   prometheus.Gauge
	droppedRows  prometheus.Gauge
	runSeconds   prometheus.Gauge
	lastRun      prometheus.Gauge
	leadTime     prometheus.Histogram
	dailyMean    *prometheus.GaugeVec
	dailySLA     *prometheus.GaugeVec
	hourlyMean   *prometheus.GaugeVec
	hourlySLA    *prometheus.GaugeVec
	hourlyOrders *prometheus.GaugeVec
}

// NewMetrics registers the leadtime_* collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		orders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_orders",
			Help: "Orders in the cleaned table by on-time status",
		}, []string{"status"}),
		slaOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_sla_orders",
			Help: "Orders by SLA status; out_of_scope orders are outside both windows",
		}, []string{"status"}),
		meanHours: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_mean_hours",
			Help: "Mean duration in hours by measure",
		}, []string{"measure"}),
		ratios: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_ratio",
			Help: "Dataset-wide proportions (0-1)",
		}, []string{"kind"}),
		capHours: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leadtime_outlier_cap_hours",
			Help: "Upper bound applied to lead times",
		}),
		cappedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leadtime_capped_rows",
			Help: "Rows whose lead time was clamped to the cap",
		}),
		droppedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leadtime_dropped_rows",
			Help: "Rows dropped for a missing delivery timestamp",
		}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leadtime_run_duration_seconds",
			Help: "Wall time of the report run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "leadtime_last_run_timestamp_seconds",
			Help: "Unix time the report run finished",
		}),
		leadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leadtime_lead_time_hours",
			Help:    "Distribution of capped lead times",
			Buckets: LeadTimeBuckets,
		}),
		dailyMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_daily_mean_lead_time_hours",
			Help: "Mean lead time by creation date",
		}, []string{"date"}),
		dailySLA: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_daily_sla_met_ratio",
			Help: "SLA met proportion by creation date",
		}, []string{"date"}),
		hourlyMean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_hourly_mean_lead_time_hours",
			Help: "Mean lead time by creation hour",
		}, []string{"hour"}),
		hourlySLA: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_hourly_sla_met_ratio",
			Help: "SLA met proportion by creation hour",
		}, []string{"hour"}),
		hourlyOrders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "leadtime_hourly_orders",
			Help: "Orders by creation hour",
		}, []string{"hour"}),
	}

	m.registry.MustRegister(
		m.orders, m.slaOrders, m.meanHours, m.ratios,
		m.capHours, m.cappedRows, m.droppedRows,
		m.runSeconds, m.lastRun, m.leadTime,
		m.dailyMean, m.dailySLA, m.hourlyMean, m.hourlySLA, m.hourlyOrders,
	)
	return m
}

// Registry exposes the registry for gathering
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets every collector from a summary and the records it was built from
func (m *Metrics) Observe(s *Summary, records []models.Record) {
	o := s.Overall

	m.orders.WithLabelValues("on_time").Set(float64(o.OnTime))
	m.orders.WithLabelValues("late").Set(float64(o.Late))

	m.slaOrders.WithLabelValues("met").Set(float64(o.SLAMet))
	m.slaOrders.WithLabelValues("not_met").Set(float64(o.SLANotMet))
	m.slaOrders.WithLabelValues("out_of_scope").Set(float64(o.Orders - o.InScope))

	m.meanHours.WithLabelValues("lead_time").Set(o.MeanLeadTimeHours)
	m.meanHours.WithLabelValues("delivery").Set(o.MeanDeliveryHours)

	m.ratios.WithLabelValues("on_time").Set(o.OnTimeRatio)
	m.ratios.WithLabelValues("late").Set(o.LateRatio)
	m.ratios.WithLabelValues("sla_met").Set(o.SLAMetRatio)
	m.ratios.WithLabelValues("sla_not_met").Set(o.SLANotMetRatio)

	m.capHours.Set(s.CapHours)
	m.cappedRows.Set(float64(s.CappedRows))
	m.droppedRows.Set(float64(s.DroppedMissingDelivery))
	m.runSeconds.Set(s.Duration.Seconds())
	m.lastRun.Set(float64(s.EndTime.Unix()))

	for _, r := range records {
		m.leadTime.Observe(r.LeadTimeHours)
	}

	for _, d := range s.Daily {
		m.dailyMean.WithLabelValues(d.Label).Set(d.MeanLeadTimeHours)
		m.dailySLA.WithLabelValues(d.Label).Set(d.SLAMetRatio)
	}
	for _, h := range s.Hourly {
		m.hourlyMean.WithLabelValues(h.Label).Set(h.MeanLeadTimeHours)
		m.hourlySLA.WithLabelValues(h.Label).Set(h.SLAMetRatio)
		m.hourlyOrders.WithLabelValues(h.Label).Set(float64(h.Orders))
	}
}
