// Package core turns stored datapoints into plottable line graphs and hosts the command entry points.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/trackstat/core/axis"
	"github.com/huangsam/trackstat/core/expr"
	"github.com/huangsam/trackstat/core/timehelper"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/internal/outwriter"
	"github.com/huangsam/trackstat/schema"
)

// NewFactoryFromConfig builds a graph factory over the managed stores.
func NewFactoryFromConfig(cfg *contract.Config, mgr contract.CacheManager) *GraphFactory {
	factory := NewGraphFactory(mgr.GetPointStore())
	factory.Prefs = cfg.Prefs
	factory.Workers = cfg.Workers
	factory.Cache = mgr.GetResultStore()
	return factory
}

// RenderGraph renders a graph with the configured window overrides applied.
func RenderGraph(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, graph schema.LineGraph) (*schema.LineGraphViewData, error) {
	cfg.ApplyWindow(&graph)
	return NewFactoryFromConfig(cfg, mgr).CreateViewData(ctx, graph, nil)
}

// ExecuteGraph renders a graph and prints it using the configured output format.
func ExecuteGraph(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, graph schema.LineGraph) error {
	start := time.Now()
	data, err := RenderGraph(ctx, cfg, mgr, graph)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteGraph(data, cfg, time.Since(start))
}

// EvaluateExpression samples every bound feature in full and evaluates code against them.
func EvaluateExpression(ctx context.Context, source contract.DataSource, code string, inputs map[string]int64) ([]schema.EvalBinding, error) {
	values := make(map[string]expr.Value, len(inputs))
	for name, id := range inputs {
		if source == nil {
			return nil, fmt.Errorf("input '%s' needs a point store", name)
		}
		dataType, err := source.GetFeatureType(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", name, err)
		}
		points, err := source.GetPoints(ctx, id, contract.PointQuery{Order: contract.OldestFirst})
		if err != nil {
			return nil, fmt.Errorf("input '%s': %w", name, err)
		}
		values[name] = expr.SeriesInput(points, dataType, schema.Irregular)
	}

	env, err := expr.Evaluate(ctx, code, values)
	if err != nil {
		return nil, err
	}
	return expr.ToBindings(env), nil
}

// ExecuteEval evaluates an expression and prints the resulting environment.
func ExecuteEval(ctx context.Context, cfg *contract.Config, source contract.DataSource, code string, inputs map[string]int64) error {
	bindings, err := EvaluateExpression(ctx, source, code, inputs)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteEval(bindings, cfg)
}

// SolveAxis runs the y axis solver and expands the answer with its label values.
func SolveAxis(yMin, yMax float64, timeBased, fixed, strict bool) (schema.AxisResult, error) {
	result := schema.AxisResult{YMin: yMin, YMax: yMax, TimeBased: timeBased, Fixed: fixed}
	if strict {
		params, err := axis.GetYParametersStrict(yMin, yMax, timeBased, fixed)
		if err != nil {
			return result, err
		}
		result.Params = params
	} else {
		result.Params = axis.GetYParameters(yMin, yMax, timeBased, fixed)
	}

	best := axis.FindBestInterval(yMin, yMax, timeBased, fixed)
	result.IsGoodSolution = best.IsGoodSolution
	result.PercentageRangeUsed = best.PercentageRangeUsed
	if best.IsGoodSolution {
		result.Interval = best.Interval
	}
	result.Labels = axisLabels(result.Params)
	return result, nil
}

// axisLabels lists the y values of every labelled line.
func axisLabels(p schema.YAxisParameters) []float64 {
	if p.StepMode == schema.IncrementBy {
		var labels []float64
		step := float64(p.NIntervals)
		for v := p.BoundsMin; step > 0 && v <= p.BoundsMax; v += step {
			labels = append(labels, v)
		}
		if len(labels) == 0 {
			labels = []float64{p.BoundsMin}
		}
		return labels
	}
	if p.NIntervals < 2 {
		return []float64{p.BoundsMin}
	}
	step := (p.BoundsMax - p.BoundsMin) / float64(p.NIntervals-1)
	labels := make([]float64, p.NIntervals)
	for i := range labels {
		labels[i] = p.BoundsMin + float64(i)*step
	}
	labels[len(labels)-1] = p.BoundsMax
	return labels
}

// ExecuteAxis solves the y axis for a range and prints the parameters.
func ExecuteAxis(cfg *contract.Config, yMin, yMax float64, timeBased, fixed, strict bool) error {
	result, err := SolveAxis(yMin, yMax, timeBased, fixed, strict)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteAxis(result, cfg)
}

// FindBucketStart returns the start of the bucket of the given size containing ts.
func FindBucketStart(prefs timehelper.AggregationPreferences, ts time.Time, temporal string) (schema.BucketResult, error) {
	t, err := timehelper.ParseTemporal(temporal)
	if err != nil {
		return schema.BucketResult{}, err
	}
	start := timehelper.New(prefs).FindBeginningOfTemporal(ts, t)
	return schema.BucketResult{Timestamp: ts, Temporal: t.String(), Start: start}, nil
}

// ExecuteBucket prints the bucket start of a timestamp.
func ExecuteBucket(cfg *contract.Config, ts time.Time, temporal string) error {
	result, err := FindBucketStart(cfg.Prefs, ts, temporal)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteBucket(result, cfg)
}
