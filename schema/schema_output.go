package schema

import "time"

// StepMode represents how the y axis labels are laid out.
type StepMode string

const (
	// Subdivide splits the bounds into NIntervals evenly spaced lines.
	Subdivide StepMode = "subdivide"
	// IncrementBy places a line every NIntervals units starting at BoundsMin.
	IncrementBy StepMode = "increment_by"
)

// YAxisParameters describe the bounds and label layout of a y axis.
type YAxisParameters struct {
	BoundsMin  float64  `json:"bounds_min"`
	BoundsMax  float64  `json:"bounds_max"`
	StepMode   StepMode `json:"step_mode"`
	NIntervals int      `json:"n_intervals"`
}

// XY is a plotted point. X is milliseconds relative to the graph end time.
type XY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is the rectangle occupied by plotted data.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// Union returns the smallest bounds containing both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		MinX: min(b.MinX, o.MinX),
		MaxX: max(b.MaxX, o.MaxX),
		MinY: min(b.MinY, o.MinY),
		MaxY: max(b.MaxY, o.MaxY),
	}
}

// PlottedSeries is the plottable result of one graph feature.
type PlottedSeries struct {
	Feature   LineGraphFeature `json:"feature"`
	Plottable bool             `json:"plottable"`
	Points    []XY             `json:"points,omitempty"`
	Times     []time.Time      `json:"times,omitempty"` // Timestamps matching Points
	MinMax    Bounds           `json:"min_max"`
}

// LineGraphViewData is everything a renderer needs to draw a line graph.
type LineGraphViewData struct {
	GraphName          string          `json:"graph_name"`
	HasPlottableData   bool            `json:"has_plottable_data"`
	DurationBasedRange bool            `json:"duration_based_range"`
	YRangeType         YRangeType      `json:"y_range_type"`
	Bounds             Bounds          `json:"bounds"`
	EndTime            time.Time       `json:"end_time"`
	Series             []PlottedSeries `json:"series"`
	YAxis              YAxisParameters `json:"y_axis"`
	XAxisInterval      time.Duration   `json:"x_axis_interval"`
	ReferencedPoints   []DataPoint     `json:"referenced_points,omitempty"`
}

// EvalBinding is one variable of an evaluated expression environment, flattened for output.
type EvalBinding struct {
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	Summary  string      `json:"summary"`
	Number   *float64    `json:"number,omitempty"`
	Duration string      `json:"duration,omitempty"`
	Text     string      `json:"text,omitempty"`
	DataType string      `json:"data_type,omitempty"`
	Points   []DataPoint `json:"points,omitempty"`
}

// BucketResult is the answer to a bucket start query.
type BucketResult struct {
	Timestamp time.Time `json:"timestamp"`
	Temporal  string    `json:"temporal"`
	Start     time.Time `json:"start"`
}

// AxisResult is the answer to an axis query, including the winning candidate.
type AxisResult struct {
	YMin                float64         `json:"y_min"`
	YMax                float64         `json:"y_max"`
	TimeBased           bool            `json:"time_based"`
	Fixed               bool            `json:"fixed"`
	Params              YAxisParameters `json:"params"`
	Interval            float64         `json:"interval"`
	IsGoodSolution      bool            `json:"is_good_solution"`
	PercentageRangeUsed float64         `json:"percentage_range_used"`
	Labels              []float64       `json:"labels"`
}
