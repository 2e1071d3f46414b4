package pipeline

import (
	"time"

	"github.com/psantana5/leadtime/pkg/models"
)

// LeadTime returns the lead time in hours for one order.
//
// Orders created at or after the cutoff hour and delivered on a later calendar
// date are treated as created at the next-day start hour, plus one full day of
// carry-over. Everything else is plain elapsed time. adjusted reports which
// branch was taken.
func LeadTime(created, delivered time.Time, rules models.Rules) (hours float64, adjusted bool) {
	if created.Hour() >= rules.CutoffHour && !SameDate(created, delivered) {
		start := DayAt(created, 1, rules.NextDayStartHour)
		return delivered.Sub(start).Hours() + 24, true
	}
	return delivered.Sub(created).Hours(), false
}

// ClassifyWindow decides which SLA eligibility window admits the order.
//
//	morning:   created hour < cutoff  AND delivered on the same calendar date
//	afternoon: created hour >= cutoff AND delivered <= next date at the deadline hour
//
// Anything else is out of scope.
func ClassifyWindow(created, delivered time.Time, rules models.Rules) models.SLAWindow {
	if created.Hour() < rules.CutoffHour {
		if SameDate(created, delivered) {
			return models.WindowMorning
		}
		return models.WindowNone
	}

	deadline := DayAt(created, 1, rules.AfternoonDeadlineHour)
	if !delivered.After(deadline) {
		return models.WindowAfternoon
	}
	return models.WindowNone
}

// OnTimeStatus returns On Time when the lead time is within the threshold
func OnTimeStatus(leadTimeHours float64, rules models.Rules) models.OnTimeStatus {
	if leadTimeHours <= rules.SLAThresholdHours {
		return models.OnTime
	}
	return models.Late
}

// SLAStatus returns the SLA verdict, or SLANotApplicable outside every window
func SLAStatus(leadTimeHours float64, window models.SLAWindow, rules models.Rules) models.SLAStatus {
	if !window.InScope() {
		return models.SLANotApplicable
	}
	if leadTimeHours <= rules.SLAThresholdHours {
		return models.SLAMet
	}
	return models.SLANotMet
}

// SameDate compares calendar dates, not elapsed time
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayAt returns t's calendar date shifted by offsetDays, at hour:00:00
func DayAt(t time.Time, offsetDays, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+offsetDays, hour, 0, 0, 0, t.Location())
}
