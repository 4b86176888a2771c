// Package parquet provides data structures and functions for exporting trackstat
// datapoints and rendered graphs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/trackstat/schema"
	"github.com/parquet-go/parquet-go"
)

// DataPoint represents a single stored observation with its feature metadata.
// This struct maps to the trackstat_data_points table joined with trackstat_features.
type DataPoint struct {
	// FeatureID references the feature the point belongs to
	FeatureID int64 `parquet:"feature_id,snappy"`

	// FeatureName is the unique name of the feature
	FeatureName string `parquet:"feature_name,snappy,dict"`

	// DataType is numerical, time or categorical
	DataType string `parquet:"data_type,snappy,dict"`

	// Timestamp is when the observation was made (stored as TIMESTAMP with nanosecond precision)
	Timestamp time.Time `parquet:"timestamp,snappy"`

	// UTCOffsetSeconds is the offset the observation was recorded in
	UTCOffsetSeconds int32 `parquet:"utc_offset_seconds,snappy"`

	// Value holds seconds for time features
	Value float64 `parquet:"value,snappy"`

	// Label is the category of categorical points (nullable)
	Label *string `parquet:"label,optional,snappy"`

	// Note is free text attached by the user (nullable)
	Note *string `parquet:"note,optional,snappy"`
}

// GraphPoint represents one plotted point of a rendered line graph.
type GraphPoint struct {
	GraphName    string    `parquet:"graph_name,snappy,dict"`
	SeriesIndex  int32     `parquet:"series_index,snappy"`
	FeatureName  string    `parquet:"feature_name,snappy,dict"`
	Timestamp    time.Time `parquet:"timestamp,snappy"`
	OffsetMillis float64   `parquet:"offset_millis,snappy"` // x, relative to the graph end
	Value        float64   `parquet:"value,snappy"`         // y, after scale and offset
}

// writeRows encodes rows with a schema inferred from the struct tags of T.
func writeRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}

func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return writeRows(file, rows)
}

// WriteDataPoints writes stored datapoints to w.
func WriteDataPoints(w io.Writer, data []DataPoint) error {
	return writeRows(w, data)
}

// WriteDataPointsParquet writes stored datapoints to a Parquet file.
func WriteDataPointsParquet(data []DataPoint, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteGraphPoints writes plotted graph points to w.
func WriteGraphPoints(w io.Writer, data []GraphPoint) error {
	return writeRows(w, data)
}

// WriteGraphPointsParquet writes plotted graph points to a Parquet file.
func WriteGraphPointsParquet(data []GraphPoint, outputPath string) error {
	return writeFile(data, outputPath)
}

// ReadDataPointsParquet reads back a datapoint export.
func ReadDataPointsParquet(path string) ([]DataPoint, error) {
	rows, err := parquet.ReadFile[DataPoint](path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file %s: %w", path, err)
	}
	return rows, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ConvertDataPointRecords converts schema.DataPointRecord to DataPoint for Parquet export.
func ConvertDataPointRecords(records []schema.DataPointRecord) []DataPoint {
	result := make([]DataPoint, len(records))
	for i, record := range records {
		result[i] = DataPoint{
			FeatureID:   record.FeatureID,
			FeatureName: record.FeatureName,
			DataType:    record.DataType,
			Timestamp:   record.Timestamp,
			Value:       record.Value,
			Label:       optional(record.Label),
			Note:        optional(record.Note),

			UTCOffsetSeconds: int32(schema.UTCOffset(record.Timestamp)),
		}
	}
	return result
}

// ToImportRows converts an export back into importable rows.
func ToImportRows(rows []DataPoint) []schema.ImportRow {
	result := make([]schema.ImportRow, len(rows))
	for i, row := range rows {
		dataType, _ := schema.ParseDataType(row.DataType)
		result[i] = schema.ImportRow{
			Line:        i + 1,
			FeatureName: row.FeatureName,
			DataType:    dataType,
			Timestamp:   schema.ZonedTime(row.Timestamp.UnixMilli(), int(row.UTCOffsetSeconds)),
			Value:       row.Value,
		}
		if row.Label != nil {
			result[i].Label = *row.Label
		}
		if row.Note != nil {
			result[i].Note = *row.Note
		}
	}
	return result
}

// ConvertViewData flattens the plottable series of a rendered graph.
func ConvertViewData(data *schema.LineGraphViewData) []GraphPoint {
	var result []GraphPoint
	for i, series := range data.Series {
		if !series.Plottable {
			continue
		}
		for j, p := range series.Points {
			row := GraphPoint{
				GraphName:    data.GraphName,
				SeriesIndex:  int32(i),
				FeatureName:  series.Feature.Name,
				OffsetMillis: p.X,
				Value:        p.Y,
			}
			if j < len(series.Times) {
				row.Timestamp = series.Times[j]
			} else {
				row.Timestamp = data.EndTime.Add(time.Duration(p.X) * time.Millisecond)
			}
			result = append(result, row)
		}
	}
	return result
}
