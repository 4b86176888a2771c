package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		in      string
		want    DataType
		wantErr bool
	}{
		{"", Numerical, false},
		{"numerical", Numerical, false},
		{"Continuous", Numerical, false},
		{"time", Time, false},
		{" duration ", Time, false},
		{"categorical", Categorical, false},
		{"discrete", Categorical, false},
		{"colour", Numerical, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDataType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataTypeJSON(t *testing.T) {
	b, err := json.Marshal(Feature{ID: 3, Name: "sleep", DataType: Time})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"name":"sleep","data_type":"time"}`, string(b))

	var f Feature
	require.NoError(t, json.Unmarshal(b, &f))
	assert.Equal(t, Time, f.DataType)

	assert.Error(t, json.Unmarshal([]byte(`{"data_type":"bogus"}`), &f))
	assert.Equal(t, "DataType(9)", DataType(9).String())
}

func TestDataPointWithValue(t *testing.T) {
	ts := time.Date(2020, 6, 8, 0, 0, 0, 0, time.UTC)
	dp := DataPoint{Timestamp: ts, FeatureID: 1, Value: 2, Label: "a", Note: "n"}
	next := dp.WithValue(5)
	assert.Equal(t, 2.0, dp.Value)
	assert.Equal(t, 5.0, next.Value)
	assert.Equal(t, dp.Label, next.Label)
	assert.Equal(t, ts, next.Timestamp)
}

func TestLineGraphFeatureHelpers(t *testing.T) {
	f := LineGraphFeature{AveragingMode: WeeklyMovingAverage, DurationPlottingMode: DurationPlotHours}
	assert.Equal(t, 7*24*time.Hour, f.MovingAverageWindow())
	assert.Equal(t, 3600.0, f.DurationDivisor())
	assert.False(t, f.IsDerived())

	f = LineGraphFeature{Expression: &FeatureExpression{Code: "Delta(x)"}}
	assert.Equal(t, time.Duration(0), f.MovingAverageWindow())
	assert.Equal(t, 1.0, f.DurationDivisor())
	assert.True(t, f.IsDerived())
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{MinX: -10, MaxX: 0, MinY: 1, MaxY: 2}
	b := Bounds{MinX: -5, MaxX: 3, MinY: -1, MaxY: 1.5}
	assert.Equal(t, Bounds{MinX: -10, MaxX: 3, MinY: -1, MaxY: 2}, a.Union(b))
}

func TestRegularityString(t *testing.T) {
	assert.Equal(t, "regular", Regular.String())
	assert.Equal(t, "irregular", Irregular.String())
}
