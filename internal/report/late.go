package report

import (
	"sort"
	"sync"
	"time"

	"github.com/psantana5/leadtime/pkg/models"
)

// LateSample is one late order kept for inspection
type LateSample struct {
	Row           int              `json:"row" yaml:"row"`
	CreatedAt     time.Time        `json:"created_at" yaml:"created_at"`
	DeliveredAt   time.Time        `json:"delivered_at" yaml:"delivered_at"`
	LeadTimeHours float64          `json:"lead_time_hours" yaml:"lead_time_hours"`
	Capped        bool             `json:"capped" yaml:"capped"`
	Window        models.SLAWindow `json:"sla_window" yaml:"sla_window"`
	SLA           models.SLAStatus `json:"sla,omitempty" yaml:"sla,omitempty"`
}

// LateLog keeps the slowest late orders seen, up to a fixed size.
// When full, a new sample replaces the fastest one if it is slower.
type LateLog struct {
	samples []LateSample
	maxSize int
	seen    int
	mu      sync.RWMutex
}

// NewLateLog creates a late log with fixed size
func NewLateLog(maxSize int) *LateLog {
	if maxSize < 0 {
		maxSize = 0
	}
	return &LateLog{
		samples: make([]LateSample, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record adds r if it is late
func (l *LateLog) Record(r models.Record) {
	if r.OnTime != models.Late {
		return
	}

	sample := LateSample{
		Row:           r.Row,
		CreatedAt:     r.CreatedAt,
		DeliveredAt:   r.DeliveredAt,
		LeadTimeHours: r.LeadTimeHours,
		Capped:        r.Capped,
		Window:        r.Window,
		SLA:           r.SLA,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seen++
	if l.maxSize == 0 {
		return
	}
	if len(l.samples) < l.maxSize {
		l.samples = append(l.samples, sample)
		return
	}

	fastest := 0
	for i := range l.samples {
		if l.samples[i].LeadTimeHours < l.samples[fastest].LeadTimeHours {
			fastest = i
		}
	}
	if sample.LeadTimeHours > l.samples[fastest].LeadTimeHours {
		l.samples[fastest] = sample
	}
}

// Slowest returns up to n kept samples, slowest first. Ties keep row order.
func (l *LateLog) Slowest(n int) []LateSample {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.samples) {
		n = len(l.samples)
	}

	out := make([]LateSample, len(l.samples))
	copy(out, l.samples)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LeadTimeHours != out[j].LeadTimeHours {
			return out[i].LeadTimeHours > out[j].LeadTimeHours
		}
		return out[i].Row < out[j].Row
	})
	return out[:n]
}

// Count returns the number of late orders recorded, kept or not
func (l *LateLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seen
}
