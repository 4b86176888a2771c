package schema

import "time"

// LineGraph is the definition of a line graph and the features it plots.
type LineGraph struct {
	ID       int64              `json:"id"`
	Name     string             `json:"name"`
	Features []LineGraphFeature `json:"features"`

	Duration *time.Duration `json:"duration,omitempty"` // nil means no lower bound
	EndDate  *time.Time     `json:"end_date,omitempty"` // nil means now

	YRangeType YRangeType `json:"y_range_type"`
	YFrom      float64    `json:"y_from"`
	YTo        float64    `json:"y_to"`
}

// LineGraphFeature configures how one feature is sampled, transformed and drawn.
type LineGraphFeature struct {
	FeatureID  int64  `json:"feature_id"`
	Name       string `json:"name"`
	ColorIndex int    `json:"color_index"`

	AveragingMode        AveragingMode        `json:"averaging_mode"`
	PlottingMode         PlottingMode         `json:"plotting_mode"`
	PointStyle           PointStyle           `json:"point_style"`
	DurationPlottingMode DurationPlottingMode `json:"duration_plotting_mode"`

	Offset float64 `json:"offset"`
	Scale  float64 `json:"scale"`

	// DataType is only consulted for derived features; stored features report their own type.
	DataType DataType `json:"data_type"`

	Expression *FeatureExpression `json:"expression,omitempty"`
}

// FeatureExpression derives a feature from other features.
// Inputs maps variable names used by Code to stored feature ids.
type FeatureExpression struct {
	Code   string           `json:"code"`
	Inputs map[string]int64 `json:"inputs"`
}

// IsDerived reports whether the feature is computed by an expression.
func (f LineGraphFeature) IsDerived() bool {
	return f.Expression != nil && f.Expression.Code != ""
}

// MovingAverageWindow returns the averaging window of the feature, or zero for none.
func (f LineGraphFeature) MovingAverageWindow() time.Duration {
	return MovingAverageWindows[f.AveragingMode]
}

// DurationDivisor returns the divisor applied to plotted values for duration features.
func (f LineGraphFeature) DurationDivisor() float64 {
	if d, ok := DurationDivisors[f.DurationPlottingMode]; ok {
		return d
	}
	return 1
}
