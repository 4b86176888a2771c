// Package timehelper provides calendar arithmetic for bucketing datapoints by durations and periods.
package timehelper

import "time"

// AggregationPreferences control where calendar buckets begin.
type AggregationPreferences struct {
	FirstDayOfWeek time.Weekday
	StartTimeOfDay time.Duration // offset from midnight, in [0, 24h)
}

// DefaultPreferences starts weeks on Monday and days at midnight.
func DefaultPreferences() AggregationPreferences {
	return AggregationPreferences{FirstDayOfWeek: time.Monday}
}

// TimeHelper computes bucket boundaries for a fixed set of preferences.
type TimeHelper struct {
	prefs AggregationPreferences
}

// New returns a TimeHelper using the given preferences.
func New(prefs AggregationPreferences) *TimeHelper {
	if prefs.StartTimeOfDay < 0 || prefs.StartTimeOfDay >= day {
		prefs.StartTimeOfDay = 0
	}
	return &TimeHelper{prefs: prefs}
}

// Prefs returns the preferences of the helper.
func (h *TimeHelper) Prefs() AggregationPreferences {
	return h.prefs
}

type bucketClass int

const (
	classInstant bucketClass = iota
	classSubHour
	classHour
	classDay
	classWeek
	classMonth
	classQuarter
	classHalfYear
	classYear
)

// Day-count limits used to snap durations onto calendar units.
const (
	weekLimit     = 7 * day
	monthLimit    = 31 * day
	quarterLimit  = 92 * day
	halfYearLimit = 183 * day
)

func classifyDuration(d time.Duration) bucketClass {
	switch {
	case d <= 0:
		return classInstant
	case d < time.Hour && time.Hour%d == 0:
		return classSubHour
	case d <= time.Hour:
		return classHour
	case d <= day:
		return classDay
	case d <= weekLimit:
		return classWeek
	case d <= monthLimit:
		return classMonth
	case d <= quarterLimit:
		return classQuarter
	case d <= halfYearLimit:
		return classHalfYear
	default:
		return classYear
	}
}

func classifyPeriod(years, months, days int) bucketClass {
	total := years*12 + months
	if total <= 0 {
		return classifyDuration(time.Duration(days) * day)
	}
	switch {
	case total == 1 && days == 0:
		return classMonth
	case total < 3 || (total == 3 && days == 0):
		return classQuarter
	case total < 6 || (total == 6 && days == 0):
		return classHalfYear
	default:
		return classYear
	}
}

func classify(t Temporal) bucketClass {
	if t.period {
		return classifyPeriod(t.years, t.months, t.days)
	}
	return classifyDuration(t.duration)
}

// FindBeginningOfTemporal returns the start of the bucket of size temporal containing ts.
// Buckets are computed in the location of ts. Durations that do not name a calendar unit
// are snapped to the smallest unit that holds them; non-positive temporals return ts.
func (h *TimeHelper) FindBeginningOfTemporal(ts time.Time, temporal Temporal) time.Time {
	switch classify(temporal) {
	case classSubHour:
		return h.truncateSinceDayStart(ts, temporal.duration)
	case classHour:
		return h.truncateSinceDayStart(ts, time.Hour)
	case classDay:
		return h.calendarStart(ts, midnight(ts), 0, 0, 1)
	case classWeek:
		m := midnight(ts)
		back := (int(m.Weekday()) - int(h.prefs.FirstDayOfWeek) + 7) % 7
		return h.calendarStart(ts, m.AddDate(0, 0, -back), 0, 0, 7)
	case classMonth:
		return h.calendarStart(ts, monthStart(ts, int(ts.Month())), 0, 1, 0)
	case classQuarter:
		return h.calendarStart(ts, monthStart(ts, QuarterStartMonth(int(ts.Month()))), 0, 3, 0)
	case classHalfYear:
		return h.calendarStart(ts, monthStart(ts, HalfYearStartMonth(int(ts.Month()))), 0, 6, 0)
	case classYear:
		return h.calendarStart(ts, monthStart(ts, 1), 1, 0, 0)
	default:
		return ts
	}
}

// calendarStart offsets base by the start time of day and steps back one unit if that passes ts.
func (h *TimeHelper) calendarStart(ts, base time.Time, years, months, days int) time.Time {
	start := base.Add(h.prefs.StartTimeOfDay)
	if start.After(ts) {
		start = base.AddDate(-years, -months, -days).Add(h.prefs.StartTimeOfDay)
	}
	return start
}

func (h *TimeHelper) truncateSinceDayStart(ts time.Time, d time.Duration) time.Time {
	anchor := midnight(ts).Add(h.prefs.StartTimeOfDay)
	if anchor.After(ts) {
		anchor = midnight(ts).AddDate(0, 0, -1).Add(h.prefs.StartTimeOfDay)
	}
	elapsed := ts.Sub(anchor)
	return anchor.Add(elapsed - elapsed%d)
}

func midnight(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

func monthStart(ts time.Time, month int) time.Time {
	return time.Date(ts.Year(), time.Month(month), 1, 0, 0, 0, 0, ts.Location())
}

var (
	quarterStartMonths  = [12]int{1, 1, 1, 4, 4, 4, 7, 7, 7, 10, 10, 10}
	halfYearStartMonths = [12]int{1, 1, 1, 1, 1, 1, 7, 7, 7, 7, 7, 7}
)

// QuarterStartMonth maps a 1-indexed month to the first month of its quarter.
func QuarterStartMonth(month int) int {
	return quarterStartMonths[((month-1)%12+12)%12]
}

// HalfYearStartMonth maps a 1-indexed month to the first month of its half-year.
func HalfYearStartMonth(month int) int {
	return halfYearStartMonths[((month-1)%12+12)%12]
}
