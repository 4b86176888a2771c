// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/trackstat/schema"
)

// ErrFeatureNotFound is returned when a feature id or name does not exist.
var ErrFeatureNotFound = errors.New("feature not found")

// PointOrder selects the timestamp ordering of returned points.
type PointOrder int

// All point orders supported.
const (
	OldestFirst PointOrder = iota
	NewestFirst
)

// PointQuery narrows a point read. Zero times are unbounded and both bounds are inclusive.
type PointQuery struct {
	From  time.Time
	To    time.Time
	Order PointOrder
	Limit int // 0 means no limit
}

// DataSource is the read side the statistics core samples features from.
// This allows the graph factory to be tested without a real database.
type DataSource interface {
	// GetPoints returns the points of a feature matching the query.
	GetPoints(ctx context.Context, featureID int64, q PointQuery) ([]schema.DataPoint, error)

	// GetPointAtOrBefore returns the latest point at or before ts, or nil when there is none.
	GetPointAtOrBefore(ctx context.Context, featureID int64, ts time.Time) (*schema.DataPoint, error)

	// GetPointAtOrAfter returns the earliest point at or after ts, or nil when there is none.
	GetPointAtOrAfter(ctx context.Context, featureID int64, ts time.Time) (*schema.DataPoint, error)

	// GetFeatureType returns the declared data type of a feature.
	GetFeatureType(ctx context.Context, featureID int64) (schema.DataType, error)
}

// Revisioned is implemented by sources that can tell when their data changed.
// The revision grows on every write, so it doubles as a cache key component.
type Revisioned interface {
	Revision(ctx context.Context) (int64, error)
}

// PointStore is a DataSource that also owns the stored features and points.
type PointStore interface {
	DataSource
	Revisioned

	// UpsertFeature returns the feature with the given name, creating it when missing.
	// The boolean reports whether it was created.
	UpsertFeature(ctx context.Context, name string, dataType schema.DataType) (schema.Feature, bool, error)

	// FindFeature looks a feature up by name.
	FindFeature(ctx context.Context, name string) (schema.Feature, error)

	// ListFeatures returns all features ordered by id.
	ListFeatures(ctx context.Context) ([]schema.Feature, error)

	// DeleteFeature removes a feature and its points.
	DeleteFeature(ctx context.Context, featureID int64) error

	// InsertPoints writes points, replacing any with the same feature and timestamp.
	InsertPoints(ctx context.Context, points []schema.DataPoint) (int, error)

	// ExportPoints returns every point joined with its feature, for bulk export.
	ExportPoints(ctx context.Context) ([]schema.DataPointRecord, error)

	// SummarizeFeatures returns every feature with its point count and time extent.
	SummarizeFeatures(ctx context.Context) ([]schema.FeatureSummary, error)

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Clear removes all features and points.
	Clear(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error
}
