package sample

import (
	"context"
	"iter"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2020, 7, 8, 12, 0, 0, 0, time.UTC)

// pointsHoursBefore builds ascending points at the given hour offsets before testNow.
func pointsHoursBefore(values []float64, hours []int) []schema.DataPoint {
	out := make([]schema.DataPoint, len(hours))
	for i, h := range hours {
		out[i] = schema.DataPoint{Timestamp: testNow.Add(-time.Duration(h) * time.Hour), FeatureID: 1, Value: values[i]}
	}
	return out
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

var testHours = []int{70, 50, 49, 48, 43, 41, 30, 20, 10}

func TestDataSampleRestartable(t *testing.T) {
	calls := 0
	s := FromSeq(func() iter.Seq[schema.DataPoint] {
		calls++
		return func(yield func(schema.DataPoint) bool) {
			for _, dp := range pointsHoursBefore([]float64{1, 2}, []int{2, 1}) {
				if !yield(dp) {
					return
				}
			}
		}
	}, Properties{Order: Ascending})

	first := s.Points()
	second := s.Points()
	assert.Len(t, first, 2)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second iteration differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, 2, calls)
}

func TestDataSampleAscending(t *testing.T) {
	asc := pointsHoursBefore([]float64{1, 2, 3}, []int{3, 2, 1})
	desc := []schema.DataPoint{asc[2], asc[1], asc[0]}
	shuffled := []schema.DataPoint{asc[1], asc[2], asc[0]}

	for name, s := range map[string]DataSample{
		"ascending":  FromPoints(asc, Properties{Order: Ascending}),
		"descending": FromPoints(desc, Properties{Order: Descending}),
		"unknown":    FromPoints(shuffled, Properties{}),
	} {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(asc, s.Ascending()); diff != "" {
				t.Errorf("Ascending() diff (-want +got):\n%s", diff)
			}
		})
	}

	// the backing slice of the input is left alone
	assert.Equal(t, 2.0, shuffled[0].Value)
}

func TestEmptySample(t *testing.T) {
	s := Empty(Properties{DataType: schema.Time})
	assert.Empty(t, s.Points())
	assert.Equal(t, schema.Time, s.Properties().DataType)

	var zero DataSample
	assert.Empty(t, zero.Points())
}

func TestIdentity(t *testing.T) {
	in := FromPoints(pointsHoursBefore([]float64{1}, []int{1}), Properties{Order: Ascending})
	out, err := Identity{}.Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in.Points(), out.Points())
}

func TestClipping(t *testing.T) {
	points := pointsHoursBefore([]float64{1, 2, 3, 4}, []int{48, 24, 12, 0})
	in := FromPoints(points, Properties{Order: Ascending})
	dur := 24 * time.Hour
	end := testNow.Add(-time.Hour)

	tests := []struct {
		name     string
		clip     Clipping
		expected []float64
	}{
		{"window excludes lower boundary", Clipping{EndDate: &testNow, Duration: &dur}, []float64{3, 4}},
		{"end date excludes later points", Clipping{EndDate: &end, Duration: &dur}, []float64{2, 3}},
		{"nil duration has no lower bound", Clipping{EndDate: &end}, []float64{1, 2, 3}},
		{"nil end date keeps everything", Clipping{Duration: &dur}, []float64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.clip.Execute(context.Background(), in)
			require.NoError(t, err)
			var got []float64
			for dp := range out.Iterate() {
				got = append(got, dp.Value)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestClippingPreservesOrderAndRaw(t *testing.T) {
	points := pointsHoursBefore([]float64{1, 2, 3}, []int{1, 2, 3})
	in := FromPoints(points, Properties{Order: Descending}).WithRawPoints(points)
	dur := 150 * time.Minute
	out, err := Clipping{EndDate: &testNow, Duration: &dur}.Execute(context.Background(), in)
	require.NoError(t, err)

	got := out.Points()
	require.Len(t, got, 2)
	assert.Equal(t, 1.0, got[0].Value)
	assert.Equal(t, 2.0, got[1].Value)
	assert.Equal(t, Descending, out.Properties().Order)
	assert.Len(t, out.RawPoints(), 3)
}

func TestClipPoints(t *testing.T) {
	points := pointsHoursBefore([]float64{1, 2}, []int{30, 1})
	dur := 24 * time.Hour
	got := ClipPoints(points, &testNow, &dur)
	require.Len(t, got, 1)
	assert.Equal(t, 2.0, got[0].Value)
}

func TestCompositeOrderAndError(t *testing.T) {
	var order []string
	step := func(name string) Function {
		return FunctionFunc(func(_ context.Context, s DataSample) (DataSample, error) {
			order = append(order, name)
			return s, nil
		})
	}
	failing := FunctionFunc(func(context.Context, DataSample) (DataSample, error) {
		return DataSample{}, context.Canceled
	})

	in := Empty(Properties{})
	_, err := NewComposite(step("agg"), step("avg"), step("clip")).Execute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []string{"agg", "avg", "clip"}, order)

	order = nil
	_, err = NewComposite(step("agg"), failing, step("clip")).Execute(context.Background(), in)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"agg"}, order)
}

func TestFunctionsHonorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := FromPoints(pointsHoursBefore([]float64{1, 2}, []int{2, 1}), Properties{Order: Ascending})

	for name, fn := range map[string]Function{
		"identity":       Identity{},
		"clipping":       Clipping{},
		"moving average": MovingAverage{Window: time.Hour},
		"aggregation":    DurationAggregation{Temporal: timehelperDay()},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := fn.Execute(ctx, in)
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}
