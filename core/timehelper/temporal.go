package timehelper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Temporal is either a fixed Duration or a calendar Period of years, months and days.
// Calendar periods have variable length and are added with calendar arithmetic.
type Temporal struct {
	duration time.Duration
	years    int
	months   int
	days     int
	period   bool
}

// DurationOf returns a fixed-length temporal.
func DurationOf(d time.Duration) Temporal {
	return Temporal{duration: d}
}

// PeriodOf returns a calendar period.
func PeriodOf(years, months, days int) Temporal {
	return Temporal{years: years, months: months, days: days, period: true}
}

// Months returns a period of n months.
func Months(n int) Temporal { return PeriodOf(0, n, 0) }

// Years returns a period of n years.
func Years(n int) Temporal { return PeriodOf(n, 0, 0) }

// Weeks returns a period of n weeks.
func Weeks(n int) Temporal { return PeriodOf(0, 0, 7*n) }

// IsPeriod reports whether t is a calendar period.
func (t Temporal) IsPeriod() bool { return t.period }

// Duration returns the fixed duration of a non-period temporal.
func (t Temporal) Duration() time.Duration { return t.duration }

// Period returns the components of a calendar period.
func (t Temporal) Period() (years, months, days int) { return t.years, t.months, t.days }

// IsPositive reports whether adding t moves time forward.
func (t Temporal) IsPositive() bool {
	if t.period {
		return t.years >= 0 && t.months >= 0 && t.days >= 0 && t.years+t.months+t.days > 0
	}
	return t.duration > 0
}

// AddTo returns ts advanced by t. Whole-day durations keep wall clock alignment across DST changes.
func (t Temporal) AddTo(ts time.Time) time.Time {
	if t.period {
		return ts.AddDate(t.years, t.months, t.days)
	}
	if t.duration > 0 && t.duration%day == 0 {
		return ts.AddDate(0, 0, int(t.duration/day))
	}
	return ts.Add(t.duration)
}

// SubtractFrom returns ts moved back by t.
func (t Temporal) SubtractFrom(ts time.Time) time.Time {
	if t.period {
		return ts.AddDate(-t.years, -t.months, -t.days)
	}
	if t.duration > 0 && t.duration%day == 0 {
		return ts.AddDate(0, 0, -int(t.duration/day))
	}
	return ts.Add(-t.duration)
}

// String renders durations in Go notation (whole days as "Nd") and periods in ISO-8601 notation.
func (t Temporal) String() string {
	if !t.period {
		if t.duration > 0 && t.duration%day == 0 {
			return fmt.Sprintf("%dd", t.duration/day)
		}
		return t.duration.String()
	}
	var b strings.Builder
	b.WriteString("P")
	if t.years != 0 {
		fmt.Fprintf(&b, "%dY", t.years)
	}
	if t.months != 0 {
		fmt.Fprintf(&b, "%dM", t.months)
	}
	if t.days != 0 || (t.years == 0 && t.months == 0) {
		fmt.Fprintf(&b, "%dD", t.days)
	}
	return b.String()
}

var (
	unitTemporalRegex = regexp.MustCompile(`^(\d+)\s*(d|days?|w|weeks?|mo|months?|y|years?)$`)
	isoPeriodRegex    = regexp.MustCompile(`^P(?:(\d+)Y)?(?:(\d+)M)?(?:(\d+)W)?(?:(\d+)D)?$`)
)

// ParseTemporal parses "1h", "90m", "7d", "2w", "1mo", "3 months", "1y" or ISO periods like "P1M".
// Days and weeks are durations; months and years are calendar periods.
func ParseTemporal(s string) (Temporal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Temporal{}, fmt.Errorf("empty temporal")
	}

	if m := isoPeriodRegex.FindStringSubmatch(strings.ToUpper(s)); m != nil && len(s) > 1 {
		vals := make([]int, 4)
		for i := range vals {
			if m[i+1] != "" {
				v, err := strconv.Atoi(m[i+1])
				if err != nil {
					return Temporal{}, fmt.Errorf("invalid period '%s': %w", s, err)
				}
				vals[i] = v
			}
		}
		return PeriodOf(vals[0], vals[1], vals[2]*7+vals[3]), nil
	}

	if m := unitTemporalRegex.FindStringSubmatch(strings.ToLower(s)); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Temporal{}, fmt.Errorf("invalid temporal '%s': %w", s, err)
		}
		switch m[2][0] {
		case 'd':
			return DurationOf(time.Duration(n) * day), nil
		case 'w':
			return DurationOf(time.Duration(n) * 7 * day), nil
		case 'm':
			return Months(n), nil
		default:
			return Years(n), nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return Temporal{}, fmt.Errorf("invalid temporal '%s'. expected e.g. 1h, 7d, 1mo, 1y or P1M", s)
	}
	return DurationOf(d), nil
}
