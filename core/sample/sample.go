// Package sample provides DataSample, a restartable sequence of datapoints, and the
// transformation functions applied to samples before plotting.
package sample

import (
	"iter"
	"slices"

	"github.com/huangsam/trackstat/schema"
)

// Order is the timestamp ordering a producer promises for its sequence.
type Order int

// All orders supported.
const (
	Unknown Order = iota
	Ascending
	Descending
)

// Properties is the metadata attached to a sample.
type Properties struct {
	DataType   schema.DataType
	Regularity schema.Regularity
	Order      Order
}

// DataSample is a lazy, restartable sequence of datapoints with metadata.
// Every call to Iterate starts again from the first point.
type DataSample struct {
	props Properties
	seq   func() iter.Seq[schema.DataPoint]
	raw   []schema.DataPoint
}

// FromPoints returns a sample over a fixed slice. The slice must not be modified afterwards.
func FromPoints(points []schema.DataPoint, props Properties) DataSample {
	return DataSample{
		props: props,
		seq: func() iter.Seq[schema.DataPoint] {
			return slices.Values(points)
		},
	}
}

// FromSeq returns a sample whose points are produced by calling factory on every iteration.
func FromSeq(factory func() iter.Seq[schema.DataPoint], props Properties) DataSample {
	return DataSample{props: props, seq: factory}
}

// Empty returns a sample without points.
func Empty(props Properties) DataSample {
	return FromPoints(nil, props)
}

// WithRawPoints attaches the points originally read from storage, before any transformation.
func (s DataSample) WithRawPoints(raw []schema.DataPoint) DataSample {
	s.raw = raw
	return s
}

// RawPoints returns the points originally read from storage, if recorded.
func (s DataSample) RawPoints() []schema.DataPoint {
	return s.raw
}

// Properties returns the metadata of the sample.
func (s DataSample) Properties() Properties {
	return s.props
}

// Iterate returns a fresh iterator over the points.
func (s DataSample) Iterate() iter.Seq[schema.DataPoint] {
	if s.seq == nil {
		return func(func(schema.DataPoint) bool) {}
	}
	return s.seq()
}

// Points materializes the sample in producer order.
func (s DataSample) Points() []schema.DataPoint {
	return slices.Collect(s.Iterate())
}

// Ascending materializes the sample sorted by ascending timestamp.
func (s DataSample) Ascending() []schema.DataPoint {
	points := s.Points()
	switch s.props.Order {
	case Ascending:
	case Descending:
		slices.Reverse(points)
	default:
		SortAscending(points)
	}
	return points
}

// SortAscending sorts points in place by timestamp, keeping equal timestamps in input order.
func SortAscending(points []schema.DataPoint) {
	slices.SortStableFunc(points, func(a, b schema.DataPoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}

// derive returns a sample over points carrying the raw side channel of s.
func (s DataSample) derive(points []schema.DataPoint, props Properties) DataSample {
	return FromPoints(points, props).WithRawPoints(s.raw)
}
