package contract

import (
	"context"
	"time"

	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/mock"
)

// MockDataSource is a mock implementation of DataSource for testing.
type MockDataSource struct {
	mock.Mock
}

var (
	_ DataSource = &MockDataSource{} // Compile-time check
	_ Revisioned = &MockDataSource{}
)

// GetPoints implements the DataSource interface.
func (m *MockDataSource) GetPoints(ctx context.Context, featureID int64, q PointQuery) ([]schema.DataPoint, error) {
	args := m.Called(ctx, featureID, q)
	points, _ := args.Get(0).([]schema.DataPoint)
	return points, args.Error(1)
}

// GetPointAtOrBefore implements the DataSource interface.
func (m *MockDataSource) GetPointAtOrBefore(ctx context.Context, featureID int64, ts time.Time) (*schema.DataPoint, error) {
	args := m.Called(ctx, featureID, ts)
	point, _ := args.Get(0).(*schema.DataPoint)
	return point, args.Error(1)
}

// GetPointAtOrAfter implements the DataSource interface.
func (m *MockDataSource) GetPointAtOrAfter(ctx context.Context, featureID int64, ts time.Time) (*schema.DataPoint, error) {
	args := m.Called(ctx, featureID, ts)
	point, _ := args.Get(0).(*schema.DataPoint)
	return point, args.Error(1)
}

// GetFeatureType implements the DataSource interface.
func (m *MockDataSource) GetFeatureType(ctx context.Context, featureID int64) (schema.DataType, error) {
	args := m.Called(ctx, featureID)
	return args.Get(0).(schema.DataType), args.Error(1)
}

// Revision implements the Revisioned interface.
func (m *MockDataSource) Revision(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockFeatureLookup is a mock implementation of FeatureLookup for testing.
type MockFeatureLookup struct {
	mock.Mock
}

var _ FeatureLookup = &MockFeatureLookup{} // Compile-time check

// FindFeature implements the FeatureLookup interface.
func (m *MockFeatureLookup) FindFeature(ctx context.Context, name string) (schema.Feature, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(schema.Feature), args.Error(1)
}
