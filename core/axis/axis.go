// Package axis chooses human friendly bounds and label spacing for graph axes.
package axis

import (
	"errors"
	"math"

	"github.com/huangsam/trackstat/schema"
)

// ErrNoGoodInterval is returned by strict solving when no candidate meets the quality threshold.
var ErrNoGoodInterval = errors.New("no good y interval found")

// Tunable search parameters.
const (
	minLines      = 6    // fewest labelled lines drawn
	maxLines      = 12   // most labelled lines drawn
	fallbackLines = 11   // lines drawn when no good solution exists
	goodRangeUsed = 0.75 // a candidate is good when the data covers this fraction of its bounds
	gridTolerance = 1e-9 // relative slack when snapping values to the interval grid
	tieTolerance  = 1e-12
)

// PossibleInterval is one scored candidate of the search.
type PossibleInterval struct {
	Interval            float64
	IsGoodSolution      bool
	NIntervals          int     // labelled lines, bounds included
	Base                float64 // decade or time unit the interval is a multiple of
	BoundsMin           float64
	BoundsMax           float64
	PercentageRangeUsed float64
}

// GetYParameters picks y axis parameters for data spanning [yMin, yMax]. It never fails:
// when no good candidate exists the bounds are split into 11 lines.
// Time based values are in seconds.
func GetYParameters(yMin, yMax float64, timeBased, fixed bool) schema.YAxisParameters {
	params, err := GetYParametersStrict(yMin, yMax, timeBased, fixed)
	if err != nil {
		return fallback(yMin, yMax)
	}
	return params
}

// GetYParametersStrict is like GetYParameters but reports ErrNoGoodInterval instead of falling back.
func GetYParametersStrict(yMin, yMax float64, timeBased, fixed bool) (schema.YAxisParameters, error) {
	best := FindBestInterval(yMin, yMax, timeBased, fixed)
	if !best.IsGoodSolution {
		return schema.YAxisParameters{}, ErrNoGoodInterval
	}
	return schema.YAxisParameters{
		BoundsMin:  best.BoundsMin,
		BoundsMax:  best.BoundsMax,
		StepMode:   schema.Subdivide,
		NIntervals: best.NIntervals,
	}, nil
}

// FindBestInterval returns the highest scoring candidate for [yMin, yMax]. Ties go to the
// candidate drawing more lines. Invalid ranges yield a non-good candidate covering the input.
func FindBestInterval(yMin, yMax float64, timeBased, fixed bool) PossibleInterval {
	if !validRange(yMin, yMax) {
		return fallbackCandidate(yMin, yMax)
	}

	var candidates []PossibleInterval
	if fixed {
		candidates = fixedCandidates(yMin, yMax, timeBased)
	} else {
		candidates = dynamicCandidates(yMin, yMax, timeBased)
	}

	var best PossibleInterval
	found := false
	for _, c := range candidates {
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	if !found {
		return fallbackCandidate(yMin, yMax)
	}
	return best
}

func fallbackCandidate(yMin, yMax float64) PossibleInterval {
	return PossibleInterval{
		Interval:            (yMax - yMin) / float64(fallbackLines-1),
		NIntervals:          fallbackLines,
		Base:                1,
		BoundsMin:           yMin,
		BoundsMax:           yMax,
		PercentageRangeUsed: 1,
	}
}

func better(c, best PossibleInterval) bool {
	if c.IsGoodSolution != best.IsGoodSolution {
		return c.IsGoodSolution
	}
	diff := c.PercentageRangeUsed - best.PercentageRangeUsed
	if math.Abs(diff) > tieTolerance {
		return diff > 0
	}
	return c.NIntervals > best.NIntervals
}

func validRange(yMin, yMax float64) bool {
	for _, v := range []float64{yMin, yMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return yMin < yMax && !math.IsInf(yMax-yMin, 0)
}

func fallback(yMin, yMax float64) schema.YAxisParameters {
	return schema.YAxisParameters{
		BoundsMin:  yMin,
		BoundsMax:  yMax,
		StepMode:   schema.Subdivide,
		NIntervals: fallbackLines,
	}
}

// dynamicCandidates widens [yMin, yMax] to the grid of each nice interval.
func dynamicCandidates(yMin, yMax float64, timeBased bool) []PossibleInterval {
	var out []PossibleInterval
	for _, n := range niceIntervals(yMax-yMin, timeBased) {
		lo := math.Floor(yMin/n.interval + gridTolerance)
		hi := math.Ceil(yMax/n.interval - gridTolerance)
		steps := hi - lo
		if math.IsNaN(steps) || steps < minLines-1 || steps > maxLines-1 {
			continue
		}
		lines := int(steps) + 1
		boundsMin := math.Min(lo*n.interval, yMin)
		boundsMax := math.Max(hi*n.interval, yMax)
		used := (yMax - yMin) / (boundsMax - boundsMin)
		out = append(out, PossibleInterval{
			Interval:            n.interval,
			IsGoodSolution:      used >= goodRangeUsed,
			NIntervals:          lines,
			Base:                n.base,
			BoundsMin:           boundsMin,
			BoundsMax:           boundsMax,
			PercentageRangeUsed: used,
		})
	}
	return out
}

// fixedCandidates keeps the bounds and looks for a line count giving a nice interval.
func fixedCandidates(yMin, yMax float64, timeBased bool) []PossibleInterval {
	span := yMax - yMin
	nice := niceIntervals(span, timeBased)
	var out []PossibleInterval
	for lines := minLines; lines <= maxLines; lines++ {
		interval := span / float64(lines-1)
		for _, n := range nice {
			if math.Abs(interval-n.interval) > gridTolerance*n.interval {
				continue
			}
			out = append(out, PossibleInterval{
				Interval:            interval,
				IsGoodSolution:      true,
				NIntervals:          lines,
				Base:                n.base,
				BoundsMin:           yMin,
				BoundsMax:           yMax,
				PercentageRangeUsed: 1,
			})
			break
		}
	}
	return out
}
