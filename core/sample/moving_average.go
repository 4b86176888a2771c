package sample

import (
	"context"
	"math"
	"time"

	"github.com/huangsam/trackstat/schema"
)

// MovingAverage replaces every value by the mean of all points in [timestamp-Window, timestamp].
// The window is causal, not centered. Output has one point per input point with the same
// timestamp, in ascending order.
type MovingAverage struct {
	Window time.Duration
}

var _ Function = MovingAverage{}

// Execute implements Function. Unsorted input is sorted first.
func (m MovingAverage) Execute(ctx context.Context, s DataSample) (DataSample, error) {
	if err := ctx.Err(); err != nil {
		return DataSample{}, err
	}
	props := s.Properties()
	props.Order = Ascending

	points := s.Ascending()
	out := make([]schema.DataPoint, len(points))
	left := 0
	var sum runningSum
	for i, dp := range points {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return DataSample{}, err
			}
		}
		sum.add(dp.Value)
		windowStart := dp.Timestamp.Add(-m.Window)
		for left < i && points[left].Timestamp.Before(windowStart) {
			sum.add(-points[left].Value)
			left++
		}
		if left == i {
			sum = runningSum{total: dp.Value}
		}
		out[i] = dp.WithValue(sum.value() / float64(i-left+1))
	}
	return s.derive(out, props), nil
}

// runningSum is a Neumaier compensated sum, so values leaving the window do not
// take the low-order bits of the remaining ones with them.
type runningSum struct {
	total, compensation float64
}

func (r *runningSum) add(v float64) {
	t := r.total + v
	if math.Abs(r.total) >= math.Abs(v) {
		r.compensation += (r.total - t) + v
	} else {
		r.compensation += (v - t) + r.total
	}
	r.total = t
}

func (r runningSum) value() float64 {
	return r.total + r.compensation
}
