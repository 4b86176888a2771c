package expr

import (
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/trackstat/schema"
)

// ValueKind tags the variant of a Value.
type ValueKind int

// All value kinds supported.
const (
	NumberKind ValueKind = iota
	DatapointsKind
	TimeKind
	StringKind
)

var valueKindNames = map[ValueKind]string{
	NumberKind:     "number",
	DatapointsKind: "datapoints",
	TimeKind:       "time",
	StringKind:     "string",
}

// String implements fmt.Stringer.
func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ValueKind(%d)", int(k))
}

// Value is an immutable result of evaluating an expression.
type Value interface {
	Kind() ValueKind
	String() string
}

// NumberValue is a plain number.
type NumberValue float64

// Kind implements Value.
func (NumberValue) Kind() ValueKind { return NumberKind }

func (v NumberValue) String() string {
	return strconv.FormatFloat(float64(v), 'g', -1, 64)
}

// TimeValue is a duration.
type TimeValue struct {
	Duration time.Duration
}

// Kind implements Value.
func (TimeValue) Kind() ValueKind { return TimeKind }

func (v TimeValue) String() string { return v.Duration.String() }

// StringValue is a string literal, used for category labels.
type StringValue string

// Kind implements Value.
func (StringValue) Kind() ValueKind { return StringKind }

func (v StringValue) String() string { return strconv.Quote(string(v)) }

// DatapointsValue is a series of datapoints in ascending timestamp order.
type DatapointsValue struct {
	Points     []schema.DataPoint
	DataType   schema.DataType
	Regularity schema.Regularity
}

// Kind implements Value.
func (DatapointsValue) Kind() ValueKind { return DatapointsKind }

func (v DatapointsValue) String() string {
	return fmt.Sprintf("datapoints(n=%d, %s)", len(v.Points), v.DataType)
}

// withPoints returns a series of the same type and regularity over new points.
func (v DatapointsValue) withPoints(points []schema.DataPoint) DatapointsValue {
	return DatapointsValue{Points: points, DataType: v.DataType, Regularity: v.Regularity}
}

// mapValues applies fn to every value of the series.
func (v DatapointsValue) mapValues(fn func(float64) float64) DatapointsValue {
	out := make([]schema.DataPoint, len(v.Points))
	for i, dp := range v.Points {
		out[i] = dp.WithValue(fn(dp.Value))
	}
	return v.withPoints(out)
}
