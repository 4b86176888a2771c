package schema

import "time"

// DataPointRecord represents a row from the trackstat_data_points table joined with its feature.
type DataPointRecord struct {
	FeatureID   int64
	FeatureName string
	DataType    string
	Timestamp   time.Time
	Value       float64
	Label       string
	Note        string
}

// ToDataPoint drops the feature metadata of the record.
func (r DataPointRecord) ToDataPoint() DataPoint {
	return DataPoint{
		Timestamp: r.Timestamp,
		FeatureID: r.FeatureID,
		Value:     r.Value,
		Label:     r.Label,
		Note:      r.Note,
	}
}

// ImportRow is one parsed line of a datapoint import.
type ImportRow struct {
	Line        int // 1-based source line, 0 when unknown
	FeatureName string
	DataType    DataType
	Timestamp   time.Time
	Value       float64
	Note        string
	Label       string
}

// ImportSummary reports the outcome of an import.
type ImportSummary struct {
	Source          string    `json:"source"`
	RowsRead        int       `json:"rows_read"`
	PointsWritten   int       `json:"points_written"`
	FeaturesCreated int       `json:"features_created"`
	Finished        time.Time `json:"finished"`
}

// FeatureSummary describes a stored feature and the extent of its points.
type FeatureSummary struct {
	Feature
	Points int       `json:"points"`
	First  time.Time `json:"first,omitzero"`
	Last   time.Time `json:"last,omitzero"`
}
