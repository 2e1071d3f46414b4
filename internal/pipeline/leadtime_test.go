package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/psantana5/leadtime/pkg/models"
)

func ts(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLeadTime(t *testing.T) {
	rules := models.DefaultRules()

	tests := []struct {
		name         string
		created      string
		delivered    string
		wantHours    float64
		wantAdjusted bool
	}{
		{"Morning order same day", "2024-01-05 10:00:00", "2024-01-05 12:30:00", 2.5, false},
		{"After cutoff delivered next day", "2024-01-05 17:00:00", "2024-01-06 10:00:00", 26.0, true},
		{"Exactly at cutoff counts as after", "2024-01-05 16:00:00", "2024-01-06 09:00:00", 25.0, true},
		{"After cutoff delivered same date", "2024-01-05 16:01:00", "2024-01-05 23:01:00", 7.0, false},
		{"Before cutoff delivered next day", "2024-01-05 15:00:00", "2024-01-06 09:00:00", 18.0, false},
		{"After cutoff delivered before next-day start", "2024-01-05 20:00:00", "2024-01-06 06:00:00", 22.0, true},
		{"After cutoff delivered two days later", "2024-01-05 18:00:00", "2024-01-07 08:00:00", 48.0, true},
		{"Month boundary", "2024-01-31 17:30:00", "2024-02-01 09:30:00", 25.5, true},
		{"Zero duration", "2024-01-05 09:00:00", "2024-01-05 09:00:00", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, adjusted := LeadTime(ts(tt.created), ts(tt.delivered), rules)
			if !approxEqual(hours, tt.wantHours) {
				t.Errorf("LeadTime() hours = %v, want %v", hours, tt.wantHours)
			}
			if adjusted != tt.wantAdjusted {
				t.Errorf("LeadTime() adjusted = %v, want %v", adjusted, tt.wantAdjusted)
			}
		})
	}
}

func TestLeadTimeBeforeCutoffIsPlainElapsed(t *testing.T) {
	rules := models.DefaultRules()
	created := ts("2024-03-10 00:00:00")

	for h := 0; h < rules.CutoffHour; h++ {
		c := created.Add(time.Duration(h) * time.Hour)
		for _, d := range []time.Duration{0, 90 * time.Minute, 26 * time.Hour, 73 * time.Hour} {
			delivered := c.Add(d)
			hours, adjusted := LeadTime(c, delivered, rules)
			if adjusted {
				t.Fatalf("created %s: unexpected adjustment", c)
			}
			if !approxEqual(hours, d.Hours()) {
				t.Errorf("created %s delivered %s: got %v, want %v", c, delivered, hours, d.Hours())
			}
		}
	}
}

func TestClassifyWindow(t *testing.T) {
	rules := models.DefaultRules()

	tests := []struct {
		name      string
		created   string
		delivered string
		want      models.SLAWindow
	}{
		{"Morning same date", "2024-01-05 10:00:00", "2024-01-05 12:30:00", models.WindowMorning},
		{"Hour 15 same date", "2024-01-05 15:59:00", "2024-01-05 23:59:00", models.WindowMorning},
		{"Morning delivered next day", "2024-01-05 10:00:00", "2024-01-06 08:00:00", models.WindowNone},
		{"Afternoon by noon next day", "2024-01-05 17:00:00", "2024-01-06 10:00:00", models.WindowAfternoon},
		{"Afternoon exactly at noon", "2024-01-05 16:00:00", "2024-01-06 12:00:00", models.WindowAfternoon},
		{"Afternoon one second late", "2024-01-05 16:00:00", "2024-01-06 12:00:01", models.WindowNone},
		{"Afternoon delivered same evening", "2024-01-05 18:00:00", "2024-01-05 20:00:00", models.WindowAfternoon},
		{"Afternoon two days later", "2024-01-05 18:00:00", "2024-01-07 09:00:00", models.WindowNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyWindow(ts(tt.created), ts(tt.delivered), rules); got != tt.want {
				t.Errorf("ClassifyWindow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOnTimeAndSLAStatus(t *testing.T) {
	rules := models.DefaultRules()

	tests := []struct {
		name       string
		hours      float64
		window     models.SLAWindow
		wantOnTime models.OnTimeStatus
		wantSLA    models.SLAStatus
	}{
		{"Under threshold in morning window", 2.5, models.WindowMorning, models.OnTime, models.SLAMet},
		{"Exactly threshold", 4, models.WindowAfternoon, models.OnTime, models.SLAMet},
		{"Over threshold", 4.01, models.WindowMorning, models.Late, models.SLANotMet},
		{"Out of scope stays not applicable", 1, models.WindowNone, models.OnTime, models.SLANotApplicable},
		{"Out of scope late", 26, models.WindowNone, models.Late, models.SLANotApplicable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OnTimeStatus(tt.hours, rules); got != tt.wantOnTime {
				t.Errorf("OnTimeStatus() = %v, want %v", got, tt.wantOnTime)
			}
			if got := SLAStatus(tt.hours, tt.window, rules); got != tt.wantSLA {
				t.Errorf("SLAStatus() = %v, want %v", got, tt.wantSLA)
			}
		})
	}
}

func TestSameDateAndDayAt(t *testing.T) {
	if !SameDate(ts("2024-01-05 00:00:00"), ts("2024-01-05 23:59:59")) {
		t.Error("Expected same calendar date")
	}
	if SameDate(ts("2024-01-05 23:59:59"), ts("2024-01-06 00:00:00")) {
		t.Error("Expected different calendar dates one second apart")
	}

	got := DayAt(ts("2024-12-31 17:45:10"), 1, 8)
	if !got.Equal(ts("2025-01-01 08:00:00")) {
		t.Errorf("DayAt() = %s, want 2025-01-01 08:00:00", got)
	}
}
