// Package ingest loads datapoints from CSV and Parquet files into a point store.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// Column names of a datapoint CSV. Note and Label are optional.
const (
	ColFeatureName = "FeatureName"
	ColTimestamp   = "Timestamp"
	ColValue       = "Value"
	ColNote        = "Note"
	ColLabel       = "Label"
)

var requiredColumns = []string{ColFeatureName, ColTimestamp, ColValue}

// durationPattern matches values such as 1:30:00 or :05:00.
var durationPattern = regexp.MustCompile(`^\d*:\d{2}:\d{2}$`)

// minuteTimestampFormat is RFC 3339 without seconds, as written by some exporters.
const minuteTimestampFormat = "2006-01-02T15:04Z07:00"

// ErrBadHeader is returned when a required column is missing.
var ErrBadHeader = errors.New("csv header must contain FeatureName, Timestamp, Value")

// LineError reports a problem with one line of an import.
type LineError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error { return e.Err }

// ReadCSV parses a datapoint CSV. Relative timestamps resolve against now.
func ReadCSV(r io.Reader, now time.Time) ([]schema.ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrBadHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	columns, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []schema.ImportRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, &LineError{Line: line, Err: err}
		}
		row, err := parseRecord(record, columns, now)
		if err != nil {
			return rows, &LineError{Line: line, Err: err}
		}
		row.Line = line
		rows = append(rows, row)
	}
	return rows, nil
}

// indexColumns maps column names to their positions, ignoring case and a leading BOM.
func indexColumns(header []string) (map[string]int, error) {
	known := []string{ColFeatureName, ColTimestamp, ColValue, ColNote, ColLabel}
	columns := make(map[string]int)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for _, name := range known {
			if strings.EqualFold(h, name) {
				columns[name] = i
			}
		}
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrBadHeader, name)
		}
	}
	return columns, nil
}

func field(record []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseRecord(record []string, columns map[string]int, now time.Time) (schema.ImportRow, error) {
	row := schema.ImportRow{
		FeatureName: field(record, columns, ColFeatureName),
		Note:        field(record, columns, ColNote),
	}
	if row.FeatureName == "" {
		return row, errors.New("missing feature name")
	}

	ts, err := parseTimestamp(field(record, columns, ColTimestamp), now)
	if err != nil {
		return row, err
	}
	row.Timestamp = ts

	row.Value, row.Label, row.DataType, err = ParseValue(field(record, columns, ColValue), field(record, columns, ColLabel))
	return row, err
}

func parseTimestamp(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	if t, err := time.Parse(minuteTimestampFormat, s); err == nil {
		return t, nil
	}
	t, err := contract.ParseTimestamp(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return t, nil
}

// ParseValue infers the data type of a raw value:
//   - h:mm:ss is a duration in seconds;
//   - index:label, or any value with a Label column, is categorical;
//   - anything else is numerical, and an empty value counts as 1.
func ParseValue(raw, label string) (float64, string, schema.DataType, error) {
	switch {
	case durationPattern.MatchString(raw):
		parts := strings.Split(raw, ":")
		var seconds float64
		for i, unit := range []float64{3600, 60, 1} {
			if parts[i] == "" {
				continue
			}
			n, err := strconv.ParseInt(parts[i], 10, 64)
			if err != nil {
				return 0, "", schema.Time, fmt.Errorf("bad duration %q: %w", raw, err)
			}
			seconds += float64(n) * unit
		}
		return seconds, "", schema.Time, nil

	case strings.Contains(raw, ":"):
		index, rest, _ := strings.Cut(raw, ":")
		v, err := strconv.ParseFloat(strings.TrimSpace(index), 64)
		if err != nil {
			return 0, "", schema.Categorical, fmt.Errorf("bad categorical value %q, expected index:label", raw)
		}
		if label == "" {
			label = strings.TrimSpace(rest)
		}
		return v, label, schema.Categorical, nil

	case raw == "":
		if label != "" {
			return 0, "", schema.Categorical, errors.New("labelled value needs an index")
		}
		return 1, "", schema.Numerical, nil

	default:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, "", schema.Numerical, fmt.Errorf("bad value %q", raw)
		}
		if label != "" {
			return v, label, schema.Categorical, nil
		}
		return v, "", schema.Numerical, nil
	}
}
