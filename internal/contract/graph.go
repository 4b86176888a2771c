package contract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/huangsam/trackstat/schema"
	"github.com/spf13/viper"
)

// FeatureLookup resolves feature names used by graph definitions.
type FeatureLookup interface {
	FindFeature(ctx context.Context, name string) (schema.Feature, error)
}

// InputRawInput binds an expression variable to a stored feature.
// A list is used instead of a map because viper folds map keys to lower case.
type InputRawInput struct {
	Name      string `mapstructure:"name"`
	FeatureID int64  `mapstructure:"feature_id"`
	Feature   string `mapstructure:"feature"`
}

// ExpressionRawInput holds a derived feature definition.
type ExpressionRawInput struct {
	Code   string          `mapstructure:"code"`
	Inputs []InputRawInput `mapstructure:"inputs"`
}

// FeatureRawInput holds one plotted feature as written in a graph file.
type FeatureRawInput struct {
	Name             string              `mapstructure:"name"`
	FeatureID        int64               `mapstructure:"feature_id"`
	Feature          string              `mapstructure:"feature"`
	ColorIndex       int                 `mapstructure:"color_index"`
	Averaging        string              `mapstructure:"averaging"`
	Plotting         string              `mapstructure:"plotting"`
	PointStyle       string              `mapstructure:"point_style"`
	DurationPlotting string              `mapstructure:"duration_plotting"`
	Offset           float64             `mapstructure:"offset"`
	Scale            *float64            `mapstructure:"scale"`
	DataType         string              `mapstructure:"data_type"`
	Expression       *ExpressionRawInput `mapstructure:"expression"`
}

// GraphRawInput holds a line graph definition as written in a YAML or JSON file.
type GraphRawInput struct {
	ID         int64             `mapstructure:"id"`
	Name       string            `mapstructure:"name"`
	Duration   string            `mapstructure:"duration"`
	End        string            `mapstructure:"end"`
	YRangeType string            `mapstructure:"y_range_type"`
	YFrom      float64           `mapstructure:"y_from"`
	YTo        float64           `mapstructure:"y_to"`
	Features   []FeatureRawInput `mapstructure:"features"`
}

// LoadGraph reads a graph definition file. The format follows the file extension.
func LoadGraph(path string) (*GraphRawInput, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read graph definition %s: %w", path, err)
	}
	return unmarshalGraph(v)
}

// ParseGraph reads a graph definition from memory in the given format (yaml or json).
func ParseGraph(data []byte, format string) (*GraphRawInput, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse graph definition: %w", err)
	}
	return unmarshalGraph(v)
}

func unmarshalGraph(v *viper.Viper) (*GraphRawInput, error) {
	var raw GraphRawInput
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode graph definition: %w", err)
	}
	return &raw, nil
}

// Validate converts the raw definition into a LineGraph. Features referenced by name are
// resolved through lookup, which may be nil when every reference uses an id.
func (g *GraphRawInput) Validate(ctx context.Context, lookup FeatureLookup, now time.Time) (schema.LineGraph, error) {
	graph := schema.LineGraph{ID: g.ID, Name: g.Name, YFrom: g.YFrom, YTo: g.YTo}

	if g.Duration != "" {
		d, err := ParseLookbackDuration(g.Duration)
		if err != nil {
			return schema.LineGraph{}, fmt.Errorf("invalid graph duration '%s': %w", g.Duration, err)
		}
		graph.Duration = &d
	}
	if g.End != "" {
		end, err := ParseTimestamp(g.End, now)
		if err != nil {
			return schema.LineGraph{}, fmt.Errorf("invalid graph end '%s': %w", g.End, err)
		}
		graph.EndDate = &end
	}

	graph.YRangeType = schema.YRangeType(orDefault(g.YRangeType, string(schema.DynamicYRange)))
	if _, ok := schema.ValidYRangeTypes[graph.YRangeType]; !ok {
		return schema.LineGraph{}, fmt.Errorf("invalid y_range_type '%s'. must be dynamic, fixed", g.YRangeType)
	}
	if graph.YRangeType == schema.FixedYRange {
		if math.IsNaN(g.YFrom) || math.IsNaN(g.YTo) || g.YFrom >= g.YTo {
			return schema.LineGraph{}, fmt.Errorf("fixed y range needs y_from < y_to (received %g, %g)", g.YFrom, g.YTo)
		}
	}

	if len(g.Features) == 0 {
		return schema.LineGraph{}, errors.New("graph has no features")
	}
	for i, raw := range g.Features {
		f, err := raw.validate(ctx, lookup)
		if err != nil {
			return schema.LineGraph{}, fmt.Errorf("feature %d: %w", i+1, err)
		}
		graph.Features = append(graph.Features, f)
	}
	return graph, nil
}

func (f *FeatureRawInput) validate(ctx context.Context, lookup FeatureLookup) (schema.LineGraphFeature, error) {
	out := schema.LineGraphFeature{
		Name:       f.Name,
		ColorIndex: f.ColorIndex,
		Offset:     f.Offset,
		Scale:      1,
	}
	if f.Scale != nil {
		out.Scale = *f.Scale
	}

	out.AveragingMode = schema.AveragingMode(orDefault(f.Averaging, string(schema.NoAveraging)))
	if _, ok := schema.ValidAveragingModes[out.AveragingMode]; !ok {
		return out, fmt.Errorf("invalid averaging '%s'", f.Averaging)
	}
	out.PlottingMode = schema.PlottingMode(orDefault(f.Plotting, string(schema.WhenTracked)))
	if _, ok := schema.ValidPlottingModes[out.PlottingMode]; !ok {
		return out, fmt.Errorf("invalid plotting '%s'", f.Plotting)
	}
	out.PointStyle = schema.PointStyle(orDefault(f.PointStyle, string(schema.PointStyleCircles)))
	if _, ok := schema.ValidPointStyles[out.PointStyle]; !ok {
		return out, fmt.Errorf("invalid point_style '%s'", f.PointStyle)
	}
	out.DurationPlottingMode = schema.DurationPlottingMode(orDefault(f.DurationPlotting, string(schema.DurationPlotNone)))
	if _, ok := schema.ValidDurationPlottingModes[out.DurationPlottingMode]; !ok {
		return out, fmt.Errorf("invalid duration_plotting '%s'", f.DurationPlotting)
	}

	if f.DataType != "" {
		dt, err := schema.ParseDataType(f.DataType)
		if err != nil {
			return out, err
		}
		out.DataType = dt
	}

	if f.Expression != nil {
		if strings.TrimSpace(f.Expression.Code) == "" {
			return out, errors.New("expression code is empty")
		}
		if f.FeatureID != 0 || f.Feature != "" {
			return out, errors.New("a feature cannot have both a stored source and an expression")
		}
		inputs := make(map[string]int64, len(f.Expression.Inputs))
		for _, in := range f.Expression.Inputs {
			if in.Name == "" {
				return out, errors.New("expression input is missing a name")
			}
			if _, dup := inputs[in.Name]; dup {
				return out, fmt.Errorf("expression input '%s' is bound twice", in.Name)
			}
			id, err := resolveFeature(ctx, lookup, in.FeatureID, in.Feature)
			if err != nil {
				return out, fmt.Errorf("input '%s': %w", in.Name, err)
			}
			inputs[in.Name] = id
		}
		out.Expression = &schema.FeatureExpression{Code: f.Expression.Code, Inputs: inputs}
		if out.Name == "" {
			out.Name = "expression"
		}
		return out, nil
	}

	id, err := resolveFeature(ctx, lookup, f.FeatureID, f.Feature)
	if err != nil {
		return out, err
	}
	out.FeatureID = id
	if out.Name == "" {
		out.Name = f.Feature
	}
	return out, nil
}

func resolveFeature(ctx context.Context, lookup FeatureLookup, id int64, name string) (int64, error) {
	if id != 0 {
		return id, nil
	}
	if name == "" {
		return 0, errors.New("feature_id or feature is required")
	}
	if lookup == nil {
		return 0, fmt.Errorf("cannot resolve feature '%s' without a store", name)
	}
	feature, err := lookup.FindFeature(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve feature '%s': %w", name, err)
	}
	return feature.ID, nil
}

func orDefault(s, def string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def
	}
	return s
}
