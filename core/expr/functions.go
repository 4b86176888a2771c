package expr

import (
	"slices"

	"github.com/huangsam/trackstat/schema"
)

// Function is a built-in callable from expressions.
// Arity is the maximum number of arguments, or -1 when the function is variadic.
type Function struct {
	Name      string
	Signature string
	Arity     int
	Params    []ValueKind
	Call      func(args []Value) (Value, error)
}

var registry = map[string]Function{
	"Delta": {
		Name: "Delta", Signature: "Delta(series) -> series",
		Arity: 1, Params: []ValueKind{DatapointsKind}, Call: delta,
	},
	"Accumulate": {
		Name: "Accumulate", Signature: "Accumulate(series) -> series",
		Arity: 1, Params: []ValueKind{DatapointsKind}, Call: accumulate,
	},
	"Derivative": {
		Name: "Derivative", Signature: "Derivative(series, perTime) -> series",
		Arity: 2, Params: []ValueKind{DatapointsKind, TimeKind}, Call: derivative,
	},
	"TimeBetween": {
		Name: "TimeBetween", Signature: "TimeBetween(series) -> time series",
		Arity: 1, Params: []ValueKind{DatapointsKind}, Call: timeBetween,
	},
	"TimeBetween2": {
		Name: "TimeBetween2", Signature: "TimeBetween2(series, reference) -> time series",
		Arity: 2, Params: []ValueKind{DatapointsKind, DatapointsKind}, Call: timeBetween2,
	},
	"Filter": {
		Name: "Filter", Signature: "Filter(series, label, ...) -> series",
		Arity: -1, Params: []ValueKind{DatapointsKind, StringKind}, Call: labelFilter("Filter", true),
	},
	"Exclude": {
		Name: "Exclude", Signature: "Exclude(series, label, ...) -> series",
		Arity: -1, Params: []ValueKind{DatapointsKind, StringKind}, Call: labelFilter("Exclude", false),
	},
}

// LookupFunction returns the built-in registered under name.
func LookupFunction(name string) (Function, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Functions lists all built-ins sorted by name.
func Functions() []Function {
	out := make([]Function, 0, len(registry))
	for _, fn := range registry {
		out = append(out, fn)
	}
	slices.SortFunc(out, func(a, b Function) int {
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})
	return out
}

// argList fetches arguments by index with an expected kind.
type argList struct {
	fn   string
	args []Value
}

func (a argList) get(index int, kind ValueKind) (Value, error) {
	if index >= len(a.args) {
		return nil, &ArgMissingError{Function: a.fn, Index: index, Expected: kind}
	}
	arg := a.args[index]
	if arg.Kind() != kind {
		return nil, &WrongArgDatatypeError{Function: a.fn, Index: index, Actual: arg.Kind(), Expected: []ValueKind{kind}}
	}
	return arg, nil
}

func (a argList) series(index int) (DatapointsValue, error) {
	v, err := a.get(index, DatapointsKind)
	if err != nil {
		return DatapointsValue{}, err
	}
	return v.(DatapointsValue), nil
}

func (a argList) time(index int) (TimeValue, error) {
	v, err := a.get(index, TimeKind)
	if err != nil {
		return TimeValue{}, err
	}
	return v.(TimeValue), nil
}

func (a argList) str(index int) (StringValue, error) {
	v, err := a.get(index, StringKind)
	if err != nil {
		return "", err
	}
	return v.(StringValue), nil
}

func (a argList) checkTooMany(expected int) error {
	if len(a.args) > expected {
		return &TooManyArgsError{Function: a.fn, Expected: expected, Actual: len(a.args)}
	}
	return nil
}

func confirmType(fn string, series DatapointsValue, allowed ...schema.DataType) error {
	if slices.Contains(allowed, series.DataType) {
		return nil
	}
	return &WrongDataTypeError{Function: fn, Actual: series.DataType, Expected: allowed}
}

// numericSeries fetches argument 0 as a numerical or time series and checks the arity.
func numericSeries(fn string, args []Value, arity int) (DatapointsValue, error) {
	a := argList{fn: fn, args: args}
	series, err := a.series(0)
	if err != nil {
		return DatapointsValue{}, err
	}
	if err := confirmType(fn, series, schema.Numerical, schema.Time); err != nil {
		return DatapointsValue{}, err
	}
	if err := a.checkTooMany(arity); err != nil {
		return DatapointsValue{}, err
	}
	return series, nil
}

// zipWithNext maps each adjacent pair of points to a new point.
func zipWithNext(points []schema.DataPoint, fn func(a, b schema.DataPoint) schema.DataPoint) []schema.DataPoint {
	if len(points) < 2 {
		return []schema.DataPoint{}
	}
	out := make([]schema.DataPoint, len(points)-1)
	for i := range out {
		out[i] = fn(points[i], points[i+1])
	}
	return out
}

func delta(args []Value) (Value, error) {
	series, err := numericSeries("Delta", args, 1)
	if err != nil {
		return nil, err
	}
	out := zipWithNext(series.Points, func(a, b schema.DataPoint) schema.DataPoint {
		return b.WithValue(b.Value - a.Value)
	})
	return series.withPoints(out), nil
}

func accumulate(args []Value) (Value, error) {
	series, err := numericSeries("Accumulate", args, 1)
	if err != nil {
		return nil, err
	}
	out := make([]schema.DataPoint, len(series.Points))
	sum := 0.0
	for i, dp := range series.Points {
		sum += dp.Value
		out[i] = dp.WithValue(sum)
	}
	return series.withPoints(out), nil
}

// derivative divides by the whole-second gap between points; equal timestamps yield ±Inf or NaN.
func derivative(args []Value) (Value, error) {
	a := argList{fn: "Derivative", args: args}
	series, err := a.series(0)
	if err != nil {
		return nil, err
	}
	perTime, err := a.time(1)
	if err != nil {
		return nil, err
	}
	if err := confirmType(a.fn, series, schema.Numerical, schema.Time); err != nil {
		return nil, err
	}
	if err := a.checkTooMany(2); err != nil {
		return nil, err
	}
	scale := perTime.Duration.Seconds()
	out := zipWithNext(series.Points, func(p, q schema.DataPoint) schema.DataPoint {
		dt := float64(q.Timestamp.Unix() - p.Timestamp.Unix())
		return q.WithValue((q.Value - p.Value) / dt * scale)
	})
	return series.withPoints(out), nil
}

func timeBetween(args []Value) (Value, error) {
	a := argList{fn: "TimeBetween", args: args}
	series, err := a.series(0)
	if err != nil {
		return nil, err
	}
	if err := a.checkTooMany(1); err != nil {
		return nil, err
	}
	out := zipWithNext(series.Points, func(p, q schema.DataPoint) schema.DataPoint {
		return q.WithValue(float64(q.Timestamp.Unix() - p.Timestamp.Unix()))
	})
	return DatapointsValue{Points: out, DataType: schema.Time, Regularity: series.Regularity}, nil
}

// timeBetween2 pairs every main point with the earliest unclaimed reference point at or after it.
// Main points are visited latest first so recent points get first claim; each reference point is
// claimed at most once and main points left without a reference are dropped.
func timeBetween2(args []Value) (Value, error) {
	a := argList{fn: "TimeBetween2", args: args}
	main, err := a.series(0)
	if err != nil {
		return nil, err
	}
	ref, err := a.series(1)
	if err != nil {
		return nil, err
	}
	if err := a.checkTooMany(2); err != nil {
		return nil, err
	}

	refs := slices.Clone(ref.Points)
	slices.SortStableFunc(refs, func(p, q schema.DataPoint) int { return p.Timestamp.Compare(q.Timestamp) })

	// available holds reference points at or after the current main point, latest at the bottom,
	// so the top is always the earliest unclaimed candidate.
	var available []schema.DataPoint
	next := len(refs) - 1
	var out []schema.DataPoint
	for i := len(main.Points) - 1; i >= 0; i-- {
		dp := main.Points[i]
		for next >= 0 && !refs[next].Timestamp.Before(dp.Timestamp) {
			available = append(available, refs[next])
			next--
		}
		if len(available) == 0 {
			continue
		}
		match := available[len(available)-1]
		available = available[:len(available)-1]
		out = append(out, dp.WithValue(float64(match.Timestamp.Unix()-dp.Timestamp.Unix())))
	}
	slices.Reverse(out)
	if out == nil {
		out = []schema.DataPoint{}
	}
	return DatapointsValue{Points: out, DataType: schema.Time, Regularity: main.Regularity}, nil
}

// labelFilter keeps points whose label is in the argument list when keep is true, and the rest otherwise.
func labelFilter(name string, keep bool) func(args []Value) (Value, error) {
	return func(args []Value) (Value, error) {
		a := argList{fn: name, args: args}
		series, err := a.series(0)
		if err != nil {
			return nil, err
		}
		if _, err := a.str(1); err != nil {
			return nil, err
		}
		labels := make(map[string]struct{}, len(args)-1)
		for i := 1; i < len(args); i++ {
			s, err := a.str(i)
			if err != nil {
				return nil, err
			}
			labels[string(s)] = struct{}{}
		}
		if err := confirmType(name, series, schema.Categorical); err != nil {
			return nil, err
		}
		out := []schema.DataPoint{}
		for _, dp := range series.Points {
			if _, ok := labels[dp.Label]; ok == keep {
				out = append(out, dp)
			}
		}
		return series.withPoints(out), nil
	}
}
