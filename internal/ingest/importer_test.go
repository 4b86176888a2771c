package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/internal/iocache"
	"github.com/huangsam/trackstat/internal/parquet"
	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `FeatureName,Timestamp,Value,Note
Weight,2024-03-01T08:00:00Z,71.5,
Weight,2024-03-02T08:00:00Z,71.1,
Sleep,2024-03-01T07:00:00Z,7:30:00,restless
Weight,2024-03-03T08:00:00Z,70.8,
`

func newImporter(store contract.PointStore) *Importer {
	im := NewImporter(store)
	im.Now = func() time.Time { return now }
	return im
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportFile(t *testing.T) {
	ctx := context.Background()
	store := iocache.NewMemoryStore()
	im := newImporter(store)
	im.BatchSize = 2
	path := writeFile(t, "points.csv", sampleCSV)

	summary, err := im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, schema.ImportSummary{
		Source:          path,
		RowsRead:        4,
		PointsWritten:   4,
		FeaturesCreated: 2,
		Finished:        now,
	}, summary)

	weight, err := store.FindFeature(ctx, "Weight")
	require.NoError(t, err)
	assert.Equal(t, schema.Numerical, weight.DataType)
	points, err := store.GetPoints(ctx, weight.ID, contract.PointQuery{})
	require.NoError(t, err)
	assert.Len(t, points, 3)

	sleep, err := store.FindFeature(ctx, "Sleep")
	require.NoError(t, err)
	assert.Equal(t, schema.Time, sleep.DataType)

	// Importing again replaces points on the same instants
	summary, err = im.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, summary.FeaturesCreated)
	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, status.TotalPoints)
}

func TestImportParquet(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "export.parquet")
	records := []schema.DataPointRecord{
		{FeatureID: 9, FeatureName: "Mood", DataType: "categorical", Timestamp: base, Value: 2, Label: "ok"},
		{FeatureID: 9, FeatureName: "Mood", DataType: "categorical", Timestamp: base.Add(time.Hour), Value: 3, Label: "good"},
	}
	require.NoError(t, parquet.WriteDataPointsParquet(parquet.ConvertDataPointRecords(records), path))

	store := iocache.NewMemoryStore()
	summary, err := newImporter(store).ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.PointsWritten)

	mood, err := store.FindFeature(ctx, "Mood")
	require.NoError(t, err)
	assert.Equal(t, schema.Categorical, mood.DataType)
	points, err := store.GetPoints(ctx, mood.ID, contract.PointQuery{})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "good", points[1].Label)
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	source := iocache.NewMemoryStore()
	_, err := newImporter(source).ImportFile(ctx, writeFile(t, "source.csv", `FeatureName,Timestamp,Value,Note
Weight,2024-03-01T08:00:00Z,71.5,
Sleep,2024-03-01T07:00+01:00,7:30:00,"restless, woke twice"
Mood,2024-03-01T21:00:00+10:00,3:Good,
Mood,2024-03-02T21:00:00+10:00,1:Bad: tired,
Weight,2024-03-02T08:00:00.250Z,71.25,
`))
	require.NoError(t, err)
	want, err := source.ExportPoints(ctx)
	require.NoError(t, err)
	require.Len(t, want, 5)

	for _, name := range []string{"export.csv", "export.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, iocache.ExecuteStoreExport(ctx, source, path, io.Discard))

			target := iocache.NewMemoryStore()
			summary, err := newImporter(target).ImportFile(ctx, path)
			require.NoError(t, err)
			assert.Equal(t, 5, summary.PointsWritten)

			got, err := target.ExportPoints(ctx)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
			for i := range want {
				assert.Equal(t, schema.UTCOffset(want[i].Timestamp), schema.UTCOffset(got[i].Timestamp), "offset of %s", want[i].FeatureName)
			}
		})
	}
}

func TestImportInconsistentType(t *testing.T) {
	ctx := context.Background()
	store := iocache.NewMemoryStore()
	path := writeFile(t, "bad.csv", "FeatureName,Timestamp,Value\nA,2024-01-01,1\nA,2024-01-02,1:00:00\n")

	summary, err := newImporter(store).ImportFile(ctx, path)
	var lineErr *LineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, 3, lineErr.Line)
	assert.Contains(t, err.Error(), "inconsistent data type")
	assert.Equal(t, 1, summary.PointsWritten, "rows before the bad line are kept")
}

func TestImportExistingFeatureType(t *testing.T) {
	ctx := context.Background()
	store := iocache.NewMemoryStore()
	_, _, err := store.UpsertFeature(ctx, "A", schema.Time)
	require.NoError(t, err)

	_, err = newImporter(store).ImportRows(ctx, "rows", []schema.ImportRow{
		{Line: 1, FeatureName: "A", DataType: schema.Numerical, Timestamp: now, Value: 1},
	})
	assert.ErrorContains(t, err, "feature \"A\" is time")
}

func TestImportStoreFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	store := &iocache.MockPointStore{}
	store.On("UpsertFeature", mock.Anything, "A", schema.Numerical).Return(schema.Feature{ID: 1, Name: "A"}, true, nil)
	store.On("InsertPoints", mock.Anything, mock.Anything).Return(0, boom)

	summary, err := newImporter(store).ImportRows(ctx, "rows", []schema.ImportRow{
		{Line: 1, FeatureName: "A", Timestamp: now, Value: 1},
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, summary.FeaturesCreated)
	assert.Zero(t, summary.PointsWritten)
}

func TestImportCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newImporter(iocache.NewMemoryStore()).ImportRows(ctx, "rows", []schema.ImportRow{
		{Line: 1, FeatureName: "A", Timestamp: now, Value: 1},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImportFileMissing(t *testing.T) {
	_, err := newImporter(iocache.NewMemoryStore()).ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorContains(t, err, "failed to open")
}
