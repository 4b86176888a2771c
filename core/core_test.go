package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/trackstat/core/axis"
	"github.com/huangsam/trackstat/core/timehelper"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func binding(t *testing.T, bindings []schema.EvalBinding, name string) schema.EvalBinding {
	t.Helper()
	for _, b := range bindings {
		if b.Name == name {
			return b
		}
	}
	t.Fatalf("binding %q not found in %v", name, bindings)
	return schema.EvalBinding{}
}

func TestEvaluateExpression(t *testing.T) {
	t.Run("numbers only", func(t *testing.T) {
		bindings, err := EvaluateExpression(context.Background(), nil, "var a = 2\nvar b = a * 21", nil)
		require.NoError(t, err)
		b := binding(t, bindings, "b")
		assert.Equal(t, "number", b.Kind)
		require.NotNil(t, b.Number)
		assert.Equal(t, 42.0, *b.Number)
	})

	t.Run("series input", func(t *testing.T) {
		src := new(contract.MockDataSource)
		src.On("GetFeatureType", mock.Anything, int64(4)).Return(schema.Numerical, nil)
		src.On("GetPoints", mock.Anything, int64(4), contract.PointQuery{Order: contract.OldestFirst}).
			Return(hourly(4, 1, 2, 3), nil)

		bindings, err := EvaluateExpression(context.Background(), src, "var doubled = steps * 2", map[string]int64{"steps": 4})
		require.NoError(t, err)
		src.AssertExpectations(t)

		b := binding(t, bindings, "doubled")
		assert.Equal(t, "datapoints", b.Kind)
		require.Len(t, b.Points, 3)
		assert.Equal(t, 6.0, b.Points[2].Value)
	})

	t.Run("input without store", func(t *testing.T) {
		_, err := EvaluateExpression(context.Background(), nil, "var x = steps", map[string]int64{"steps": 4})
		assert.ErrorContains(t, err, "input 'steps' needs a point store")
	})

	t.Run("read failure", func(t *testing.T) {
		src := new(contract.MockDataSource)
		src.On("GetFeatureType", mock.Anything, int64(4)).Return(schema.Numerical, contract.ErrFeatureNotFound)

		_, err := EvaluateExpression(context.Background(), src, "var x = steps", map[string]int64{"steps": 4})
		assert.ErrorIs(t, err, contract.ErrFeatureNotFound)
	})

	t.Run("evaluation failure", func(t *testing.T) {
		_, err := EvaluateExpression(context.Background(), nil, "y = 1", nil)
		assert.Error(t, err)
	})
}

func TestSolveAxis(t *testing.T) {
	t.Run("fixed unit range", func(t *testing.T) {
		result, err := SolveAxis(0, 10, false, true, false)
		require.NoError(t, err)
		assert.Equal(t, schema.YAxisParameters{BoundsMin: 0, BoundsMax: 10, StepMode: schema.Subdivide, NIntervals: 11}, result.Params)
		assert.True(t, result.IsGoodSolution)
		assert.Equal(t, 1.0, result.Interval)
		require.Len(t, result.Labels, 11)
		assert.Equal(t, 0.0, result.Labels[0])
		assert.Equal(t, 10.0, result.Labels[10])
	})

	t.Run("matches solver", func(t *testing.T) {
		result, err := SolveAxis(39.2, 309.2, false, false, false)
		require.NoError(t, err)
		assert.Equal(t, axis.GetYParameters(39.2, 309.2, false, false), result.Params)
		assert.Len(t, result.Labels, result.Params.NIntervals)
		assert.Equal(t, 39.2, result.YMin)
	})

	t.Run("strict failure", func(t *testing.T) {
		_, err := SolveAxis(0, 13, false, true, true)
		assert.ErrorIs(t, err, axis.ErrNoGoodInterval)
	})

	t.Run("lenient fallback", func(t *testing.T) {
		result, err := SolveAxis(0, 13, false, true, false)
		require.NoError(t, err)
		assert.False(t, result.IsGoodSolution)
		assert.Zero(t, result.Interval)
		assert.Equal(t, 11, result.Params.NIntervals)
	})
}

func TestAxisLabels(t *testing.T) {
	assert.Equal(t, []float64{3}, axisLabels(schema.YAxisParameters{BoundsMin: 3, BoundsMax: 3, NIntervals: 1}))
	assert.Equal(t, []float64{0, 0.5, 1}, axisLabels(schema.YAxisParameters{BoundsMin: 0, BoundsMax: 1, NIntervals: 3}))
	assert.Equal(t, []float64{10, 15, 20}, axisLabels(schema.YAxisParameters{BoundsMin: 10, BoundsMax: 22, StepMode: schema.IncrementBy, NIntervals: 5}))
}

func TestFindBucketStart(t *testing.T) {
	ts := time.Date(2020, time.July, 8, 15, 30, 0, 0, time.UTC) // Wednesday
	prefs := timehelper.DefaultPreferences()

	tests := []struct {
		name     string
		prefs    timehelper.AggregationPreferences
		temporal string
		want     time.Time
	}{
		{"day", prefs, "1d", time.Date(2020, time.July, 8, 0, 0, 0, 0, time.UTC)},
		{"week from monday", prefs, "1w", time.Date(2020, time.July, 6, 0, 0, 0, 0, time.UTC)},
		{"week from sunday", timehelper.AggregationPreferences{FirstDayOfWeek: time.Sunday}, "1w", time.Date(2020, time.July, 5, 0, 0, 0, 0, time.UTC)},
		{"month", prefs, "1mo", time.Date(2020, time.July, 1, 0, 0, 0, 0, time.UTC)},
		{"year", prefs, "P1Y", time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"day after late start", timehelper.AggregationPreferences{StartTimeOfDay: 16 * time.Hour}, "1d", time.Date(2020, time.July, 7, 16, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FindBucketStart(tt.prefs, ts, tt.temporal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Start)
			assert.Equal(t, ts, result.Timestamp)
			assert.NotEmpty(t, result.Temporal)
		})
	}

	_, err := FindBucketStart(prefs, ts, "sometimes")
	assert.Error(t, err)
}

// stubManager hands out fixed stores.
type stubManager struct {
	points contract.PointStore
	cache  contract.CacheStore
}

func (m stubManager) GetResultStore() contract.CacheStore { return m.cache }
func (m stubManager) GetPointStore() contract.PointStore  { return m.points }

func TestNewFactoryFromConfig(t *testing.T) {
	cfg := &contract.Config{Workers: 3, Prefs: timehelper.AggregationPreferences{FirstDayOfWeek: time.Sunday}}
	cache := &memoryCache{}
	factory := NewFactoryFromConfig(cfg, stubManager{cache: cache})

	assert.Equal(t, 3, factory.Workers)
	assert.Equal(t, time.Sunday, factory.Prefs.FirstDayOfWeek)
	assert.Same(t, cache, factory.Cache)
}
