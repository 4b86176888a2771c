package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/trackstat/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []schema.DataPointRecord {
	base := time.Date(2024, time.March, 1, 8, 30, 0, 0, time.UTC)
	return []schema.DataPointRecord{
		{FeatureID: 1, FeatureName: "Weight", DataType: "numerical", Timestamp: base, Value: 71.4},
		{FeatureID: 2, FeatureName: "Sleep", DataType: "time", Timestamp: base.Add(time.Hour).In(time.FixedZone("CET", 3600)), Value: 27000, Note: "woke up twice"},
		{FeatureID: 3, FeatureName: "Mood", DataType: "categorical", Timestamp: base.Add(2 * time.Hour), Value: 3, Label: "ok"},
	}
}

func TestDataPointStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	s := parquet.SchemaOf(new(DataPoint))
	require.NotNil(t, s)

	for _, colName := range []string{"feature_id", "feature_name", "data_type", "timestamp", "utc_offset_seconds", "value", "label", "note"} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestGraphPointStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(GraphPoint))
	for _, colName := range []string{"graph_name", "series_index", "feature_name", "timestamp", "offset_millis", "value"} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestConvertDataPointRecords(t *testing.T) {
	rows := ConvertDataPointRecords(sampleRecords())
	require.Len(t, rows, 3)

	assert.Nil(t, rows[0].Label)
	assert.Nil(t, rows[0].Note)
	require.NotNil(t, rows[1].Note)
	assert.Equal(t, "woke up twice", *rows[1].Note)
	require.NotNil(t, rows[2].Label)
	assert.Equal(t, "ok", *rows[2].Label)
	assert.Equal(t, "categorical", rows[2].DataType)
	assert.Equal(t, int32(0), rows[0].UTCOffsetSeconds)
	assert.Equal(t, int32(3600), rows[1].UTCOffsetSeconds)
}

func TestWriteAndReadDataPointsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "points.parquet")
	data := ConvertDataPointRecords(sampleRecords())

	require.NoError(t, WriteDataPointsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should not be empty")

	readData, err := ReadDataPointsParquet(outputPath)
	require.NoError(t, err)
	require.Len(t, readData, len(data))
	for i := range data {
		assert.Equal(t, data[i].FeatureID, readData[i].FeatureID)
		assert.Equal(t, data[i].FeatureName, readData[i].FeatureName)
		assert.InDelta(t, data[i].Value, readData[i].Value, 1e-9)
		assert.WithinDuration(t, data[i].Timestamp, readData[i].Timestamp, time.Nanosecond)
		assert.Equal(t, data[i].Label == nil, readData[i].Label == nil)
		assert.Equal(t, data[i].Note == nil, readData[i].Note == nil)
	}

	imported := ToImportRows(readData)
	assert.Equal(t, "woke up twice", imported[1].Note)
	assert.Equal(t, "ok", imported[2].Label)
	assert.Empty(t, imported[0].Label)
	assert.Equal(t, 1, imported[0].Line)
	assert.Equal(t, schema.Time, imported[1].DataType)
	assert.True(t, sampleRecords()[1].Timestamp.Equal(imported[1].Timestamp))
	assert.Equal(t, "2024-03-01T10:30:00+01:00", imported[1].Timestamp.Format(time.RFC3339), "recorded offset survives")
	assert.Equal(t, time.UTC, imported[0].Timestamp.Location())
}

func TestWriteDataPointsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")

	require.NoError(t, WriteDataPointsParquet([]DataPoint{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err, "Output file should exist")
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteDataPointsParquet_InvalidPath(t *testing.T) {
	err := WriteDataPointsParquet(ConvertDataPointRecords(sampleRecords()), "/nonexistent/directory/output.parquet")
	require.Error(t, err, "Writing to invalid path should produce error")
}

func TestReadDataPointsParquet_Missing(t *testing.T) {
	_, err := ReadDataPointsParquet(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}

func TestConvertViewData(t *testing.T) {
	end := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)
	data := &schema.LineGraphViewData{
		GraphName: "Health",
		EndTime:   end,
		Series: []schema.PlottedSeries{
			{Feature: schema.LineGraphFeature{Name: "Empty"}},
			{
				Feature:   schema.LineGraphFeature{Name: "Weight"},
				Plottable: true,
				Points:    []schema.XY{{X: -7200000, Y: 70}, {X: -3600000, Y: 71}},
				Times:     []time.Time{end.Add(-2 * time.Hour), end.Add(-time.Hour)},
			},
			{
				Feature:   schema.LineGraphFeature{Name: "Untimed"},
				Plottable: true,
				Points:    []schema.XY{{X: -60000, Y: 1}},
			},
		},
	}

	rows := ConvertViewData(data)
	require.Len(t, rows, 3)
	assert.Equal(t, int32(1), rows[0].SeriesIndex)
	assert.Equal(t, "Weight", rows[0].FeatureName)
	assert.Equal(t, end.Add(-2*time.Hour), rows[0].Timestamp)
	assert.Equal(t, 71.0, rows[1].Value)
	assert.Equal(t, end.Add(-time.Minute), rows[2].Timestamp)
	assert.Equal(t, "Health", rows[2].GraphName)
}

func TestWriteGraphPoints(t *testing.T) {
	var buf bytes.Buffer
	rows := []GraphPoint{
		{GraphName: "g", SeriesIndex: 0, FeatureName: "a", Timestamp: time.Unix(0, 0).UTC(), OffsetMillis: -1000, Value: 2.5},
	}
	require.NoError(t, WriteGraphPoints(&buf, rows))

	reader := parquet.NewGenericReader[GraphPoint](bytes.NewReader(buf.Bytes()))
	defer reader.Close()

	readData := make([]GraphPoint, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 1, n)
	assert.Equal(t, 2.5, readData[0].Value)
	assert.Equal(t, -1000.0, readData[0].OffsetMillis)
}

func TestWriteGraphPointsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "graph.parquet")
	require.NoError(t, WriteGraphPointsParquet(nil, outputPath))
	_, err := os.Stat(outputPath)
	assert.NoError(t, err)
}
