package axis

import "math"

type niceInterval struct {
	interval float64
	base     float64
}

// Decimal multipliers applied to every power of ten.
var decimalSteps = []float64{1, 2, 2.5, 5}

const (
	minute = 60.0
	hour   = 60 * minute
	day    = 24 * hour
	week   = 7 * day
)

// Time intervals in seconds that read well on a clock or calendar.
var timeSteps = []niceInterval{
	{1, 1}, {2, 1}, {5, 1}, {10, 1}, {15, 1}, {20, 1}, {30, 1},
	{minute, minute}, {2 * minute, minute}, {5 * minute, minute}, {10 * minute, minute},
	{15 * minute, minute}, {20 * minute, minute}, {30 * minute, minute},
	{hour, hour}, {2 * hour, hour}, {3 * hour, hour}, {4 * hour, hour},
	{6 * hour, hour}, {8 * hour, hour}, {12 * hour, hour},
	{day, day}, {2 * day, day},
	{week, week}, {2 * week, week}, {5 * week, week},
}

// niceIntervals lists candidate intervals able to split span into a sensible number of lines.
func niceIntervals(span float64, timeBased bool) []niceInterval {
	if !timeBased {
		return decimalIntervals(span)
	}

	var out []niceInterval
	if span < 10 {
		// sub-second resolution falls back to decimal steps
		for _, n := range decimalIntervals(span) {
			if n.interval < 1 {
				out = append(out, n)
			}
		}
	}
	out = append(out, timeSteps...)
	// long ranges continue in decades of weeks
	for scale := 10.0; week*scale <= span; scale *= 10 {
		for _, m := range []float64{1, 2, 5} {
			out = append(out, niceInterval{interval: week * m * scale, base: week})
		}
	}
	return out
}

func decimalIntervals(span float64) []niceInterval {
	top := int(math.Floor(math.Log10(span)))
	var out []niceInterval
	for e := top - 2; e <= top; e++ {
		base := math.Pow10(e)
		for _, m := range decimalSteps {
			iv := m * base
			if iv <= 0 || math.IsInf(iv, 0) {
				continue
			}
			out = append(out, niceInterval{interval: iv, base: base})
		}
	}
	return out
}
