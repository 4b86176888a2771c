package sample

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/trackstat/core/timehelper"
	"github.com/huangsam/trackstat/schema"
)

// Reducer collapses the points of one bucket into a single value.
type Reducer int

// All reducers supported.
const (
	Sum Reducer = iota
	Count
	Last
	Mean
	Min
	Max
)

var reducerNames = map[Reducer]string{
	Sum:   "sum",
	Count: "count",
	Last:  "last",
	Mean:  "mean",
	Min:   "min",
	Max:   "max",
}

// String implements fmt.Stringer.
func (r Reducer) String() string {
	if name, ok := reducerNames[r]; ok {
		return name
	}
	return fmt.Sprintf("Reducer(%d)", int(r))
}

// ParseReducer converts a reducer name into a Reducer.
func ParseReducer(s string) (Reducer, error) {
	for r, name := range reducerNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return Sum, fmt.Errorf("invalid reducer '%s'. must be sum, count, last, mean, min, max", s)
}

// AggregationPolicy controls how buckets are reduced.
type AggregationPolicy struct {
	Reducer   Reducer
	FillEmpty bool // emit zero-valued points for buckets without points
}

// DefaultAggregationPolicy sums each bucket and fills gaps with zeros.
func DefaultAggregationPolicy() AggregationPolicy {
	return AggregationPolicy{Reducer: Sum, FillEmpty: true}
}

func (p AggregationPolicy) reduce(bucket []schema.DataPoint) float64 {
	if len(bucket) == 0 {
		return 0
	}
	switch p.Reducer {
	case Count:
		return float64(len(bucket))
	case Last:
		return bucket[len(bucket)-1].Value
	case Mean:
		return sumValues(bucket) / float64(len(bucket))
	case Min:
		m := bucket[0].Value
		for _, dp := range bucket[1:] {
			m = min(m, dp.Value)
		}
		return m
	case Max:
		m := bucket[0].Value
		for _, dp := range bucket[1:] {
			m = max(m, dp.Value)
		}
		return m
	default:
		return sumValues(bucket)
	}
}

func sumValues(points []schema.DataPoint) float64 {
	total := 0.0
	for _, dp := range points {
		total += dp.Value
	}
	return total
}

// DurationAggregation groups points into buckets aligned by the TimeHelper and reduces each
// bucket to one point stamped at the bucket start.
//
// The window ends at EndDate, or at the last point when EndDate is nil. It begins at the bucket
// containing EndDate-Duration, or at the bucket of the first point when Duration is nil.
// Callers that smooth the output afterwards should extend Duration by the smoothing window.
type DurationAggregation struct {
	Helper   *timehelper.TimeHelper
	Duration *time.Duration
	EndDate  *time.Time
	Temporal timehelper.Temporal
	Policy   AggregationPolicy
}

var _ Function = DurationAggregation{}

// Execute implements Function. The input is materialized and sorted, so any order is accepted.
// The output is ascending and Regular.
func (a DurationAggregation) Execute(ctx context.Context, s DataSample) (DataSample, error) {
	if err := ctx.Err(); err != nil {
		return DataSample{}, err
	}
	if !a.Temporal.IsPositive() {
		return s, nil
	}

	props := s.Properties()
	props.Regularity = schema.Regular
	props.Order = Ascending
	if a.Policy.Reducer == Count {
		props.DataType = schema.Numerical
	}

	points := s.Ascending()
	if len(points) == 0 {
		return s.derive(nil, props), nil
	}

	helper := a.Helper
	if helper == nil {
		helper = timehelper.New(timehelper.DefaultPreferences())
	}

	end := points[len(points)-1].Timestamp
	if a.EndDate != nil {
		end = *a.EndDate
	}
	var start time.Time
	if a.Duration != nil {
		start = helper.FindBeginningOfTemporal(end.Add(-*a.Duration), a.Temporal)
	} else {
		start = helper.FindBeginningOfTemporal(points[0].Timestamp, a.Temporal)
	}

	featureID := points[0].FeatureID
	idx := 0
	for idx < len(points) && points[idx].Timestamp.Before(start) {
		idx++
	}

	var out []schema.DataPoint
	for bucketStart := start; !bucketStart.After(end); {
		if err := ctx.Err(); err != nil {
			return DataSample{}, err
		}
		bucketEnd := a.Temporal.AddTo(bucketStart)
		if !bucketEnd.After(bucketStart) {
			break
		}
		first := idx
		for idx < len(points) && points[idx].Timestamp.Before(bucketEnd) {
			idx++
		}
		bucket := points[first:idx]
		if len(bucket) > 0 || a.Policy.FillEmpty {
			out = append(out, schema.DataPoint{
				Timestamp: bucketStart,
				FeatureID: featureID,
				Value:     a.Policy.reduce(bucket),
			})
		}
		bucketStart = bucketEnd
	}
	return s.derive(out, props), nil
}
