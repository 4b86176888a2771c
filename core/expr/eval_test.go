package expr

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2020, 7, 8, 12, 0, 0, 0, time.UTC)

// series builds points spaced by the given second offsets from base.
func series(dataType schema.DataType, values []float64, seconds []int64) DatapointsValue {
	points := make([]schema.DataPoint, len(values))
	for i, v := range values {
		points[i] = schema.DataPoint{Timestamp: base.Add(time.Duration(seconds[i]) * time.Second), Value: v}
	}
	return SeriesInput(points, dataType, schema.Irregular)
}

func numbers(values ...float64) DatapointsValue {
	seconds := make([]int64, len(values))
	for i := range seconds {
		seconds[i] = int64(i) * 3600
	}
	return series(schema.Numerical, values, seconds)
}

func values(v Value) []float64 {
	points := v.(DatapointsValue).Points
	out := make([]float64, len(points))
	for i, dp := range points {
		out[i] = dp.Value
	}
	return out
}

func TestEvaluateDataInput(t *testing.T) {
	data := numbers(1, 2, 3)
	inputs := map[string]Value{"data": data}

	env, err := Evaluate(context.Background(), "var a = 1", inputs)
	require.NoError(t, err)
	assert.Equal(t, NumberValue(1), env["a"])
	assert.Equal(t, data, env["data"])
	assert.Len(t, inputs, 1, "inputs must not be modified")
}

func TestEvaluateResultSelection(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected Value
	}{
		{"result variable wins", "var result = 2\nvar b = 5", NumberValue(2)},
		{"result reassigned", "var result = 2; result = result * 4; var z = 1", NumberValue(8)},
		{"last declared", "var a = 1; var b = a + 1; a + 100", NumberValue(2)},
		{"last expression", "1 + 1", NumberValue(2)},
		{"nothing", "# only a comment", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, _, err := EvaluateResult(context.Background(), tt.code, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		code     string
		expected Value
	}{
		{"1 + 2 * 3", NumberValue(7)},
		{"(1 + 2) * 3", NumberValue(9)},
		{"10 / 4 - 1", NumberValue(1.5)},
		{"-2 * -3", NumberValue(6)},
		{"1 hour + 30 minutes", TimeValue{90 * time.Minute}},
		{"1 day - 1 hour", TimeValue{23 * time.Hour}},
		{"2 * 1 hour", TimeValue{2 * time.Hour}},
		{"1 hour * 1.5", TimeValue{90 * time.Minute}},
		{"1 hour / 4", TimeValue{15 * time.Minute}},
		{"1 day / 1 hour", NumberValue(24)},
		{"-1 week", TimeValue{-7 * 24 * time.Hour}},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			result, _, err := EvaluateResult(context.Background(), tt.code, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestEvaluateSeriesArithmetic(t *testing.T) {
	inputs := map[string]Value{"data": numbers(1, 2, 3)}

	result, _, err := EvaluateResult(context.Background(), "data * 2 + 1", inputs)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5, 7}, values(result))

	result, _, err = EvaluateResult(context.Background(), "10 - data", inputs)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 8, 7}, values(result))
	assert.Equal(t, schema.Numerical, result.(DatapointsValue).DataType)

	// the input series is untouched
	assert.Equal(t, []float64{1, 2, 3}, values(inputs["data"]))
}

func TestEvaluateTypeMismatch(t *testing.T) {
	inputs := map[string]Value{"data": numbers(1, 2)}
	number, str, datapoints, duration := NumberKind, StringKind, DatapointsKind, TimeKind

	tests := []struct {
		code     string
		expected TypeMismatchError
	}{
		{`"a" + 1`, TypeMismatchError{Op: "+", Left: StringKind, Right: &number}},
		{`1 - "a"`, TypeMismatchError{Op: "-", Left: NumberKind, Right: &str}},
		{"data + data", TypeMismatchError{Op: "+", Left: DatapointsKind, Right: &datapoints}},
		{"1 hour + 1", TypeMismatchError{Op: "+", Left: TimeKind, Right: &number}},
		{"1 / 1 hour", TypeMismatchError{Op: "/", Left: NumberKind, Right: &duration}},
		{`-"a"`, TypeMismatchError{Op: "-", Left: StringKind}},
		{"-data", TypeMismatchError{Op: "-", Left: DatapointsKind}},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			_, err := Evaluate(context.Background(), tt.code, inputs)
			var mismatch *TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tt.expected, *mismatch)
		})
	}
}

func TestEvaluateVariableErrors(t *testing.T) {
	inputs := map[string]Value{"data": numbers(1, 2)}

	_, err := Evaluate(context.Background(), "var data = 2", inputs)
	var redeclared *RedeclaredVariableError
	require.ErrorAs(t, err, &redeclared)
	assert.Equal(t, "data", redeclared.Name)

	_, err = Evaluate(context.Background(), "x = 1", inputs)
	var undefined *UndefinedVariableError
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "x", undefined.Name)

	_, err = Evaluate(context.Background(), "var y = missing + 1", inputs)
	require.ErrorAs(t, err, &undefined)
	assert.Equal(t, "missing", undefined.Name)

	_, err = Evaluate(context.Background(), "Smooth(data)", inputs)
	var unknown *UnknownFunctionError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Smooth", unknown.Name)
	assert.EqualError(t, err, "unknown function 'Smooth'")
}

func TestEvaluateDurationOverflow(t *testing.T) {
	_, err := Evaluate(context.Background(), "200 weeks * 1000000", nil)
	assert.ErrorIs(t, err, ErrDurationOverflow)

	_, err = Evaluate(context.Background(), "1 hour / 0", nil)
	assert.ErrorIs(t, err, ErrDurationOverflow)
}

func TestEvaluateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env, err := Evaluate(ctx, "var a = 1", nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, env)
}

func TestEvaluateSyntaxError(t *testing.T) {
	_, err := Evaluate(context.Background(), "var = 1", nil)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.EqualError(t, err, "syntax error at 1:5: expected identifier, found '='")
}

func TestToBindings(t *testing.T) {
	env := Environment{
		"z":    StringValue("label"),
		"a":    NumberValue(2.5),
		"gap":  TimeValue{90 * time.Second},
		"data": numbers(1, 2),
	}
	bindings := ToBindings(env)
	require.Len(t, bindings, 4)

	names := []string{bindings[0].Name, bindings[1].Name, bindings[2].Name, bindings[3].Name}
	assert.Equal(t, []string{"a", "data", "gap", "z"}, names)

	require.NotNil(t, bindings[0].Number)
	assert.Equal(t, 2.5, *bindings[0].Number)
	assert.Equal(t, "number", bindings[0].Kind)
	assert.Equal(t, "numerical", bindings[1].DataType)
	assert.Len(t, bindings[1].Points, 2)
	assert.Equal(t, "datapoints(n=2, numerical)", bindings[1].Summary)
	assert.Equal(t, "1m30s", bindings[2].Duration)
	assert.Equal(t, "label", bindings[3].Text)
	assert.Equal(t, `"label"`, bindings[3].Summary)
}

func FuzzEvaluate(f *testing.F) {
	f.Add("var d = Delta(data)\nvar result = Accumulate(d) / 2")
	f.Add("Derivative(data, 1 hour) * 3")
	f.Add("TimeBetween2(data, data) - 1")
	f.Add("Filter(data, 'a')")
	f.Add("1 hour / 0.5 - 2 days")
	f.Fuzz(func(t *testing.T, code string) {
		inputs := map[string]Value{"data": numbers(1, 5, 2, 8)}
		// must never panic; errors are expected for most inputs
		_, _, _ = EvaluateResult(context.Background(), code, inputs)
	})
}
