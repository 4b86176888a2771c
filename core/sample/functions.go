package sample

import (
	"context"
	"iter"
	"time"

	"github.com/huangsam/trackstat/schema"
)

// cancelCheckInterval is how many points are consumed between cancellation checks.
const cancelCheckInterval = 1024

// Function transforms a sample into a new sample. Functions never mutate their input and
// only fail when the context is cancelled.
type Function interface {
	Execute(ctx context.Context, s DataSample) (DataSample, error)
}

// FunctionFunc adapts a plain function to the Function interface.
type FunctionFunc func(ctx context.Context, s DataSample) (DataSample, error)

// Execute implements Function.
func (f FunctionFunc) Execute(ctx context.Context, s DataSample) (DataSample, error) {
	return f(ctx, s)
}

// Identity returns its input unchanged.
type Identity struct{}

var _ Function = Identity{}

// Execute implements Function.
func (Identity) Execute(ctx context.Context, s DataSample) (DataSample, error) {
	if err := ctx.Err(); err != nil {
		return DataSample{}, err
	}
	return s, nil
}

// Composite runs functions in order, feeding each output into the next.
type Composite struct {
	Functions []Function
}

var _ Function = Composite{}

// NewComposite chains fns in the given order.
func NewComposite(fns ...Function) Composite {
	return Composite{Functions: fns}
}

// Execute implements Function. It stops at the first error.
func (c Composite) Execute(ctx context.Context, s DataSample) (DataSample, error) {
	current := s
	for _, fn := range c.Functions {
		next, err := fn.Execute(ctx, current)
		if err != nil {
			return DataSample{}, err
		}
		current = next
	}
	return current, nil
}

// Clipping keeps the points with EndDate-Duration < timestamp <= EndDate.
// A nil Duration removes the lower bound and a nil EndDate removes both bounds.
// It streams and preserves input order. Iteration stops early once ctx is done,
// so callers must check ctx.Err() after consuming the result.
type Clipping struct {
	EndDate  *time.Time
	Duration *time.Duration
}

var _ Function = Clipping{}

// Contains reports whether ts lies inside the clipping window.
func (c Clipping) Contains(ts time.Time) bool {
	if c.EndDate == nil {
		return true
	}
	if ts.After(*c.EndDate) {
		return false
	}
	if c.Duration != nil && !ts.After(c.EndDate.Add(-*c.Duration)) {
		return false
	}
	return true
}

// Execute implements Function.
func (c Clipping) Execute(ctx context.Context, s DataSample) (DataSample, error) {
	if err := ctx.Err(); err != nil {
		return DataSample{}, err
	}
	factory := func() iter.Seq[schema.DataPoint] {
		return func(yield func(schema.DataPoint) bool) {
			i := 0
			for dp := range s.Iterate() {
				i++
				if i%cancelCheckInterval == 0 && ctx.Err() != nil {
					return
				}
				if !c.Contains(dp.Timestamp) {
					continue
				}
				if !yield(dp) {
					return
				}
			}
		}
	}
	return FromSeq(factory, s.Properties()).WithRawPoints(s.RawPoints()), nil
}

// ClipPoints filters a materialized slice with the same window as Clipping.
func ClipPoints(points []schema.DataPoint, endDate *time.Time, duration *time.Duration) []schema.DataPoint {
	c := Clipping{EndDate: endDate, Duration: duration}
	var out []schema.DataPoint
	for _, dp := range points {
		if c.Contains(dp.Timestamp) {
			out = append(out, dp)
		}
	}
	return out
}
