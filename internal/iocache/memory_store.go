package iocache

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// MemoryStore is a process-local PointStore used when no database is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	nextID   int64
	revision int64
	features map[int64]schema.Feature
	points   map[int64][]schema.DataPoint // sorted by timestamp
}

var _ contract.PointStore = &MemoryStore{} // Compile-time check

// NewMemoryStore returns an empty in-memory point store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		features: make(map[int64]schema.Feature),
		points:   make(map[int64][]schema.DataPoint),
	}
}

// Revision returns a counter that grows on every write.
func (ms *MemoryStore) Revision(_ context.Context) (int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.revision, nil
}

// FindFeature looks a feature up by name.
func (ms *MemoryStore) FindFeature(_ context.Context, name string) (schema.Feature, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.findLocked(name)
}

func (ms *MemoryStore) findLocked(name string) (schema.Feature, error) {
	for _, f := range ms.features {
		if f.Name == name {
			return f, nil
		}
	}
	return schema.Feature{Name: name}, fmt.Errorf("%w: %s", contract.ErrFeatureNotFound, name)
}

// UpsertFeature returns the named feature, creating it with the data type when missing.
func (ms *MemoryStore) UpsertFeature(_ context.Context, name string, dataType schema.DataType) (schema.Feature, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Feature{}, false, errors.New("feature name cannot be empty")
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if f, err := ms.findLocked(name); err == nil {
		return f, false, nil
	}
	f := schema.Feature{ID: ms.nextID, Name: name, DataType: dataType}
	ms.nextID++
	ms.features[f.ID] = f
	ms.revision++
	return f, true, nil
}

// ListFeatures returns all features ordered by id.
func (ms *MemoryStore) ListFeatures(_ context.Context) ([]schema.Feature, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	features := make([]schema.Feature, 0, len(ms.features))
	for _, f := range ms.features {
		features = append(features, f)
	}
	slices.SortFunc(features, func(a, b schema.Feature) int { return cmp.Compare(a.ID, b.ID) })
	return features, nil
}

// DeleteFeature removes a feature and its points.
func (ms *MemoryStore) DeleteFeature(_ context.Context, featureID int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.features[featureID]; !ok {
		return fmt.Errorf("%w: id %d", contract.ErrFeatureNotFound, featureID)
	}
	delete(ms.features, featureID)
	delete(ms.points, featureID)
	ms.revision++
	return nil
}

// InsertPoints writes points, replacing any with the same feature and timestamp.
func (ms *MemoryStore) InsertPoints(_ context.Context, points []schema.DataPoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, p := range points {
		if _, ok := ms.features[p.FeatureID]; !ok {
			return 0, fmt.Errorf("%w: id %d", contract.ErrFeatureNotFound, p.FeatureID)
		}
	}
	for _, p := range points {
		p.Timestamp = schema.ZonedTime(p.Timestamp.UnixMilli(), schema.UTCOffset(p.Timestamp))
		series := ms.points[p.FeatureID]
		i, found := slices.BinarySearchFunc(series, p.Timestamp, func(dp schema.DataPoint, t time.Time) int {
			return dp.Timestamp.Compare(t)
		})
		if found {
			series[i] = p
		} else {
			series = slices.Insert(series, i, p)
		}
		ms.points[p.FeatureID] = series
	}
	ms.revision++
	return len(points), nil
}

// GetPoints returns the points of a feature matching the query.
func (ms *MemoryStore) GetPoints(_ context.Context, featureID int64, q contract.PointQuery) ([]schema.DataPoint, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var out []schema.DataPoint
	for _, p := range ms.points[featureID] {
		if !q.From.IsZero() && p.Timestamp.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && p.Timestamp.After(q.To) {
			continue
		}
		out = append(out, p)
	}
	if q.Order == contract.NewestFirst {
		slices.Reverse(out)
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// GetPointAtOrBefore returns the latest point at or before ts, or nil when there is none.
func (ms *MemoryStore) GetPointAtOrBefore(ctx context.Context, featureID int64, ts time.Time) (*schema.DataPoint, error) {
	points, _ := ms.GetPoints(ctx, featureID, contract.PointQuery{To: ts, Order: contract.NewestFirst, Limit: 1})
	if len(points) == 0 {
		return nil, nil
	}
	return &points[0], nil
}

// GetPointAtOrAfter returns the earliest point at or after ts, or nil when there is none.
func (ms *MemoryStore) GetPointAtOrAfter(ctx context.Context, featureID int64, ts time.Time) (*schema.DataPoint, error) {
	points, _ := ms.GetPoints(ctx, featureID, contract.PointQuery{From: ts, Limit: 1})
	if len(points) == 0 {
		return nil, nil
	}
	return &points[0], nil
}

// GetFeatureType returns the declared data type of a feature.
func (ms *MemoryStore) GetFeatureType(_ context.Context, featureID int64) (schema.DataType, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	f, ok := ms.features[featureID]
	if !ok {
		return schema.Numerical, fmt.Errorf("%w: id %d", contract.ErrFeatureNotFound, featureID)
	}
	return f.DataType, nil
}

// ExportPoints returns every point joined with its feature, ordered by feature and time.
func (ms *MemoryStore) ExportPoints(ctx context.Context) ([]schema.DataPointRecord, error) {
	features, _ := ms.ListFeatures(ctx)
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	var records []schema.DataPointRecord
	for _, f := range features {
		for _, p := range ms.points[f.ID] {
			records = append(records, schema.DataPointRecord{
				FeatureID:   f.ID,
				FeatureName: f.Name,
				DataType:    f.DataType.String(),
				Timestamp:   p.Timestamp,
				Value:       p.Value,
				Label:       p.Label,
				Note:        p.Note,
			})
		}
	}
	return records, nil
}

// SummarizeFeatures returns every feature with its point count and time extent.
func (ms *MemoryStore) SummarizeFeatures(ctx context.Context) ([]schema.FeatureSummary, error) {
	features, _ := ms.ListFeatures(ctx)
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	summaries := make([]schema.FeatureSummary, 0, len(features))
	for _, f := range features {
		s := schema.FeatureSummary{Feature: f}
		if series := ms.points[f.ID]; len(series) > 0 {
			s.Points = len(series)
			s.First = series[0].Timestamp
			s.Last = series[len(series)-1].Timestamp
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

// GetStatus returns status information about the store.
func (ms *MemoryStore) GetStatus(_ context.Context) (schema.StoreStatus, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	status := schema.StoreStatus{
		Backend:       string(schema.NoneBackend),
		Connected:     true,
		TotalFeatures: len(ms.features),
		Revision:      ms.revision,
		TableSizes:    make(map[string]int64),
	}
	for _, series := range ms.points {
		status.TotalPoints += len(series)
		if len(series) == 0 {
			continue
		}
		if first := series[0].Timestamp; status.OldestPointTime.IsZero() || first.Before(status.OldestPointTime) {
			status.OldestPointTime = first
		}
		if last := series[len(series)-1].Timestamp; last.After(status.LastPointTime) {
			status.LastPointTime = last
		}
	}
	status.TableSizes[featuresTable] = int64(status.TotalFeatures)
	status.TableSizes[pointsTable] = int64(status.TotalPoints)
	return status, nil
}

// Clear removes all features and points.
func (ms *MemoryStore) Clear(_ context.Context) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.features = make(map[int64]schema.Feature)
	ms.points = make(map[int64][]schema.DataPoint)
	ms.revision++
	return nil
}

// Close is a no-op.
func (ms *MemoryStore) Close() error { return nil }
