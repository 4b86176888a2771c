package axis

import "time"

var xAxisSteps = []time.Duration{
	time.Second,
	time.Minute,
	time.Hour,
	2 * time.Hour,
	3 * time.Hour,
	4 * time.Hour,
	5 * time.Hour,
	6 * time.Hour,
	8 * time.Hour,
	12 * time.Hour,
	24 * time.Hour,
	7 * 24 * time.Hour,
}

// ChooseXAxisInterval returns the smallest label interval that fits span into at most maxLabels
// labels. Spans too long for a week interval use a whole number of weeks.
func ChooseXAxisInterval(span time.Duration, maxLabels int) time.Duration {
	if maxLabels < 2 {
		maxLabels = 2
	}
	if span < 0 {
		span = -span
	}
	for _, step := range xAxisSteps {
		if labelCount(span, step) <= maxLabels {
			return step
		}
	}
	const weekStep = 7 * 24 * time.Hour
	weeks := int64(span/weekStep)/int64(maxLabels-1) + 1
	return time.Duration(weeks) * weekStep
}

func labelCount(span, step time.Duration) int {
	return int(span/step) + 1
}
