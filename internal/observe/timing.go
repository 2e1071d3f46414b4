// Package observe records wall-clock timings of the stages of a run
package observe

import (
	"sync"
	"time"
)

// Timing records start/end timestamps of one named stage
type Timing struct {
	Name        string    `json:"name" yaml:"name"`
	StartedAt   time.Time `json:"started_at" yaml:"started_at"`
	CompletedAt time.Time `json:"completed_at" yaml:"completed_at"`

	now func() time.Time
}

// Complete records completion time
func (t *Timing) Complete() {
	t.CompletedAt = t.now()
}

// Duration returns the stage duration, or the time elapsed so far if the
// stage has not completed
func (t *Timing) Duration() time.Duration {
	if t.CompletedAt.IsZero() {
		return t.now().Sub(t.StartedAt)
	}
	return t.CompletedAt.Sub(t.StartedAt)
}

// Timeline is the ordered list of stage timings of a run
type Timeline struct {
	mu      sync.Mutex
	timings []*Timing
	now     func() time.Time
}

// NewTimeline creates an empty timeline. A nil clock uses time.Now.
func NewTimeline(now func() time.Time) *Timeline {
	if now == nil {
		now = time.Now
	}
	return &Timeline{now: now}
}

// Start begins timing a stage
func (tl *Timeline) Start(name string) *Timing {
	t := &Timing{Name: name, StartedAt: tl.now(), now: tl.now}
	tl.mu.Lock()
	tl.timings = append(tl.timings, t)
	tl.mu.Unlock()
	return t
}

// Track times fn as a stage
func (tl *Timeline) Track(name string, fn func() error) error {
	t := tl.Start(name)
	defer t.Complete()
	return fn()
}

// Stages returns the duration of every completed stage, in start order
func (tl *Timeline) Stages() []StageDuration {
	tl.mu.Lock()
	defer tl.mu.Unlock()

	out := make([]StageDuration, 0, len(tl.timings))
	for _, t := range tl.timings {
		if t.CompletedAt.IsZero() {
			continue
		}
		out = append(out, StageDuration{Name: t.Name, Seconds: t.Duration().Seconds()})
	}
	return out
}

// StageDuration is the reported form of a completed Timing
type StageDuration struct {
	Name    string  `json:"name" yaml:"name"`
	Seconds float64 `json:"seconds" yaml:"seconds"`
}
