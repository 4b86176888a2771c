package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/huangsam/trackstat/core/axis"
	"github.com/huangsam/trackstat/core/expr"
	"github.com/huangsam/trackstat/core/sample"
	"github.com/huangsam/trackstat/core/timehelper"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
	"golang.org/x/sync/errgroup"
)

// minPlottablePoints is the fewest points a feature needs to be drawn.
const minPlottablePoints = 2

// minYRange is the smallest y extent a single series is given.
const minYRange = 0.1

// defaultXLabels is the label budget of the x axis unless the context overrides it.
const defaultXLabels = 10

var plottingTemporals = map[schema.PlottingMode]timehelper.Temporal{
	schema.GenerateHourlyTotals:  timehelper.DurationOf(time.Hour),
	schema.GenerateDailyTotals:   timehelper.DurationOf(24 * time.Hour),
	schema.GenerateWeeklyTotals:  timehelper.DurationOf(7 * 24 * time.Hour),
	schema.GenerateMonthlyTotals: timehelper.Months(1),
	schema.GenerateYearlyTotals:  timehelper.Years(1),
}

// Longest bucket of each plotting mode, used to read far enough back to fill the first bucket.
var plottingPadding = map[schema.PlottingMode]time.Duration{
	schema.GenerateHourlyTotals:  time.Hour,
	schema.GenerateDailyTotals:   24 * time.Hour,
	schema.GenerateWeeklyTotals:  7 * 24 * time.Hour,
	schema.GenerateMonthlyTotals: 31 * 24 * time.Hour,
	schema.GenerateYearlyTotals:  366 * 24 * time.Hour,
}

// PlottingTemporal returns the bucket size of a plotting mode. WhenTracked has none.
func PlottingTemporal(mode schema.PlottingMode) (timehelper.Temporal, bool) {
	t, ok := plottingTemporals[mode]
	return t, ok
}

// GraphFactory turns line graph definitions into plottable view data.
type GraphFactory struct {
	Source  contract.DataSource
	Prefs   timehelper.AggregationPreferences
	Cache   contract.CacheStore // optional
	Workers int
	Now     func() time.Time
}

// NewGraphFactory returns a factory reading from source with default preferences.
func NewGraphFactory(source contract.DataSource) *GraphFactory {
	return &GraphFactory{
		Source:  source,
		Prefs:   timehelper.DefaultPreferences(),
		Workers: contract.DefaultWorkers,
		Now:     time.Now,
	}
}

func (f *GraphFactory) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

// featureResult is the outcome of one feature's pipeline.
type featureResult struct {
	series     schema.PlottedSeries
	referenced []schema.DataPoint
}

// CreateViewData samples and transforms every feature of graph and computes the axes.
// onDataSampled, when not nil, receives every point inside the graph window in feature order.
// Features with fewer than two points are reported as not plottable.
func (f *GraphFactory) CreateViewData(ctx context.Context, graph schema.LineGraph, onDataSampled func([]schema.DataPoint)) (*schema.LineGraphViewData, error) {
	endTime := f.now()
	if graph.EndDate != nil {
		endTime = *graph.EndDate
	}

	if data := f.checkCacheHit(ctx, graph, endTime); data != nil {
		contract.LogDebug("graph %q served from cache", graph.Name)
		if onDataSampled != nil {
			onDataSampled(data.ReferencedPoints)
		}
		return data, nil
	}

	results := make([]featureResult, len(graph.Features))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.Workers, 1))
	for i, feature := range graph.Features {
		g.Go(func() error {
			res, err := f.plotFeature(gctx, graph, feature, endTime)
			if err != nil {
				return fmt.Errorf("feature %q: %w", feature.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := f.assemble(ctx, graph, endTime, results)
	if onDataSampled != nil {
		onDataSampled(data.ReferencedPoints)
	}
	f.store(ctx, graph, endTime, data)
	return data, nil
}

// plotFeature runs the sampling and transformation pipeline of one feature.
func (f *GraphFactory) plotFeature(ctx context.Context, graph schema.LineGraph, feature schema.LineGraphFeature, endTime time.Time) (featureResult, error) {
	raw, err := f.sampleFeature(ctx, graph, feature, endTime)
	if err != nil {
		return featureResult{}, err
	}

	// A graph without an end date ends now.
	clipping := sample.Clipping{EndDate: &endTime, Duration: graph.Duration}
	visible, err := clipping.Execute(ctx, raw)
	if err != nil {
		return featureResult{}, err
	}
	referenced := visible.Points()
	if err := ctx.Err(); err != nil {
		return featureResult{}, err
	}

	window := feature.MovingAverageWindow()
	var aggregation sample.Function = sample.Identity{}
	if temporal, ok := PlottingTemporal(feature.PlottingMode); ok {
		var duration *time.Duration
		if graph.Duration != nil {
			d := *graph.Duration + window
			duration = &d
		}
		aggregation = sample.DurationAggregation{
			Helper:   timehelper.New(f.Prefs),
			Duration: duration,
			EndDate:  &endTime,
			Temporal: temporal,
			Policy:   sample.DefaultAggregationPolicy(),
		}
	}
	var averaging sample.Function = sample.Identity{}
	if window > 0 {
		averaging = sample.MovingAverage{Window: window}
	}

	plotted, err := sample.NewComposite(aggregation, averaging, clipping).Execute(ctx, raw)
	if err != nil {
		return featureResult{}, err
	}
	points := plotted.Points()
	if err := ctx.Err(); err != nil {
		return featureResult{}, err
	}

	return featureResult{
		series:     toSeries(feature, points, endTime),
		referenced: referenced,
	}, nil
}

// sampleFeature reads the raw sample of a stored or derived feature.
func (f *GraphFactory) sampleFeature(ctx context.Context, graph schema.LineGraph, feature schema.LineGraphFeature, endTime time.Time) (sample.DataSample, error) {
	query := sampleQuery(graph, feature, endTime)
	if !feature.IsDerived() {
		value, err := f.sampleInput(ctx, feature.FeatureID, query)
		if err != nil {
			return sample.DataSample{}, err
		}
		return toSample(value), nil
	}

	inputs := make(map[string]expr.Value, len(feature.Expression.Inputs))
	for name, id := range feature.Expression.Inputs {
		value, err := f.sampleInput(ctx, id, query)
		if err != nil {
			return sample.DataSample{}, fmt.Errorf("input '%s': %w", name, err)
		}
		inputs[name] = value
	}

	result, _, err := expr.EvaluateResult(ctx, feature.Expression.Code, inputs)
	if err != nil {
		return sample.DataSample{}, err
	}
	series, ok := result.(expr.DatapointsValue)
	if !ok {
		kind := "nothing"
		if result != nil {
			kind = result.Kind().String()
		}
		return sample.DataSample{}, fmt.Errorf("expression must produce datapoints, got %s", kind)
	}
	if series.DataType == schema.Numerical && feature.DataType == schema.Time {
		series.DataType = schema.Time
	}
	return toSample(series), nil
}

// sampleQuery reads back far enough to fill the first bucket and averaging window.
func sampleQuery(graph schema.LineGraph, feature schema.LineGraphFeature, endTime time.Time) contract.PointQuery {
	q := contract.PointQuery{Order: contract.OldestFirst, To: endTime}
	if graph.Duration != nil {
		lookback := *graph.Duration + feature.MovingAverageWindow() + plottingPadding[feature.PlottingMode]
		q.From = endTime.Add(-lookback)
	}
	return q
}

func (f *GraphFactory) sampleInput(ctx context.Context, featureID int64, q contract.PointQuery) (expr.DatapointsValue, error) {
	dataType, err := f.Source.GetFeatureType(ctx, featureID)
	if err != nil {
		return expr.DatapointsValue{}, fmt.Errorf("failed to read feature %d type: %w", featureID, err)
	}
	points, err := f.Source.GetPoints(ctx, featureID, q)
	if err != nil {
		return expr.DatapointsValue{}, fmt.Errorf("failed to read feature %d points: %w", featureID, err)
	}
	contract.LogDebug("sampled %d points for feature %d", len(points), featureID)
	return expr.SeriesInput(points, dataType, schema.Irregular), nil
}

func toSample(v expr.DatapointsValue) sample.DataSample {
	props := sample.Properties{DataType: v.DataType, Regularity: v.Regularity, Order: sample.Ascending}
	points := v.Points
	return sample.FromPoints(points, props).WithRawPoints(points)
}

// toSeries converts plotted points to x/y coordinates relative to endTime.
func toSeries(feature schema.LineGraphFeature, points []schema.DataPoint, endTime time.Time) schema.PlottedSeries {
	series := schema.PlottedSeries{Feature: feature}
	if len(points) < minPlottablePoints {
		return series
	}

	divisor := feature.DurationDivisor()
	xy := make([]schema.XY, 0, len(points))
	times := make([]time.Time, 0, len(points))
	for _, dp := range points {
		y := dp.Value*feature.Scale/divisor + feature.Offset
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		xy = append(xy, schema.XY{X: float64(dp.Timestamp.Sub(endTime).Milliseconds()), Y: y})
		times = append(times, dp.Timestamp)
	}
	if len(xy) < minPlottablePoints {
		return series
	}

	bounds := schema.Bounds{MinX: xy[0].X, MaxX: xy[0].X, MinY: xy[0].Y, MaxY: xy[0].Y}
	for _, p := range xy[1:] {
		bounds = bounds.Union(schema.Bounds{MinX: p.X, MaxX: p.X, MinY: p.Y, MaxY: p.Y})
	}
	if math.Abs(bounds.MaxY-bounds.MinY) < minYRange {
		bounds.MaxY = bounds.MinY + minYRange
	}

	series.Plottable = true
	series.Points = xy
	series.Times = times
	series.MinMax = bounds
	return series
}

// assemble computes the combined bounds and axes of all series.
func (f *GraphFactory) assemble(ctx context.Context, graph schema.LineGraph, endTime time.Time, results []featureResult) *schema.LineGraphViewData {
	data := &schema.LineGraphViewData{
		GraphName:  graph.Name,
		YRangeType: graph.YRangeType,
		EndTime:    endTime,
		Series:     make([]schema.PlottedSeries, len(results)),
	}
	if data.YRangeType == "" {
		data.YRangeType = schema.DynamicYRange
	}

	hasBounds := false
	for i, res := range results {
		data.Series[i] = res.series
		data.ReferencedPoints = append(data.ReferencedPoints, res.referenced...)
		if !res.series.Plottable {
			continue
		}
		data.HasPlottableData = true
		if hasBounds {
			data.Bounds = data.Bounds.Union(res.series.MinMax)
		} else {
			data.Bounds = res.series.MinMax
			hasBounds = true
		}
	}
	for _, feature := range graph.Features {
		if feature.DurationPlottingMode == schema.DurationPlotIfPossible {
			data.DurationBasedRange = true
		}
	}

	fixed := data.YRangeType == schema.FixedYRange
	switch {
	case fixed:
		data.YAxis = axis.GetYParameters(graph.YFrom, graph.YTo, data.DurationBasedRange, true)
	case hasBounds:
		data.YAxis = axis.GetYParameters(data.Bounds.MinY, data.Bounds.MaxY, data.DurationBasedRange, false)
	default:
		data.YAxis = schema.YAxisParameters{StepMode: schema.Subdivide, NIntervals: 11}
	}
	if fixed || hasBounds {
		data.Bounds.MinY = data.YAxis.BoundsMin
		data.Bounds.MaxY = data.YAxis.BoundsMax
	}

	span := time.Duration(data.Bounds.MaxX-data.Bounds.MinX) * time.Millisecond
	data.XAxisInterval = axis.ChooseXAxisInterval(span, xLabelBudget(ctx))
	return data
}
