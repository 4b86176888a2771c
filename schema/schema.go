// Package schema has configs, models and global variables for all parts of trackstat.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DataPoint is a single timestamped observation for a feature.
// Points are immutable values; an edit supersedes a point with the same
// FeatureID and Timestamp.
type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`  // When the observation was recorded
	FeatureID int64     `json:"feature_id"` // Identity of the tracked feature
	Value     float64   `json:"value"`      // Numeric value, or seconds for duration features
	Label     string    `json:"label"`      // Category label for categorical features
	Note      string    `json:"note"`       // Free-form user note
}

// WithValue returns a copy of the point carrying a new value.
func (dp DataPoint) WithValue(v float64) DataPoint {
	dp.Value = v
	return dp
}

// DataType declares how the values of a series should be interpreted.
type DataType int

// All data types supported.
const (
	Numerical   DataType = iota // plain numbers
	Time                        // durations expressed in seconds
	Categorical                 // labelled values
)

var dataTypeNames = map[DataType]string{
	Numerical:   "numerical",
	Time:        "time",
	Categorical: "categorical",
}

// String implements fmt.Stringer.
func (d DataType) String() string {
	if name, ok := dataTypeNames[d]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int(d))
}

// ParseDataType converts a user-provided name into a DataType.
func ParseDataType(s string) (DataType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "numerical", "numeric", "continuous":
		return Numerical, nil
	case "time", "duration":
		return Time, nil
	case "categorical", "discrete":
		return Categorical, nil
	default:
		return Numerical, fmt.Errorf("invalid data type '%s'. must be numerical, time, categorical", s)
	}
}

// MarshalJSON renders the data type by name.
func (d DataType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a data type by name.
func (d *DataType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDataType(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Regularity is a plotting hint describing whether points arrive at regular intervals.
type Regularity int

// All regularities supported.
const (
	Irregular Regularity = iota
	Regular
)

// String implements fmt.Stringer.
func (r Regularity) String() string {
	if r == Regular {
		return "regular"
	}
	return "irregular"
}

// Feature describes a tracked feature known to a point store.
type Feature struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	DataType DataType `json:"data_type"`
}
