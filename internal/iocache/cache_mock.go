package iocache

import (
	"context"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetResultStore implements the CacheManager interface.
func (m *MockCacheManager) GetResultStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetPointStore implements the CacheManager interface.
func (m *MockCacheManager) GetPointStore() contract.PointStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.PointStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Clear implements the CacheStore interface.
func (m *MockCacheStore) Clear() error {
	args := m.Called()
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPointStore is a mock implementation of PointStore for testing.
type MockPointStore struct {
	contract.MockDataSource
}

var _ contract.PointStore = &MockPointStore{} // Compile-time check

// UpsertFeature implements the PointStore interface.
func (m *MockPointStore) UpsertFeature(ctx context.Context, name string, dataType schema.DataType) (schema.Feature, bool, error) {
	args := m.Called(ctx, name, dataType)
	return args.Get(0).(schema.Feature), args.Bool(1), args.Error(2)
}

// FindFeature implements the PointStore interface.
func (m *MockPointStore) FindFeature(ctx context.Context, name string) (schema.Feature, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(schema.Feature), args.Error(1)
}

// ListFeatures implements the PointStore interface.
func (m *MockPointStore) ListFeatures(ctx context.Context) ([]schema.Feature, error) {
	args := m.Called(ctx)
	features, _ := args.Get(0).([]schema.Feature)
	return features, args.Error(1)
}

// DeleteFeature implements the PointStore interface.
func (m *MockPointStore) DeleteFeature(ctx context.Context, featureID int64) error {
	args := m.Called(ctx, featureID)
	return args.Error(0)
}

// InsertPoints implements the PointStore interface.
func (m *MockPointStore) InsertPoints(ctx context.Context, points []schema.DataPoint) (int, error) {
	args := m.Called(ctx, points)
	return args.Int(0), args.Error(1)
}

// ExportPoints implements the PointStore interface.
func (m *MockPointStore) ExportPoints(ctx context.Context) ([]schema.DataPointRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.DataPointRecord)
	return records, args.Error(1)
}

// SummarizeFeatures implements the PointStore interface.
func (m *MockPointStore) SummarizeFeatures(ctx context.Context) ([]schema.FeatureSummary, error) {
	args := m.Called(ctx)
	summaries, _ := args.Get(0).([]schema.FeatureSummary)
	return summaries, args.Error(1)
}

// GetStatus implements the PointStore interface.
func (m *MockPointStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Clear implements the PointStore interface.
func (m *MockPointStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close implements the PointStore interface.
func (m *MockPointStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
