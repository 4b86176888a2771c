package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/trackstat/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestReadCSV(t *testing.T) {
	input := "\ufefffeaturename,Timestamp,Value,Note,Label\n" +
		"Weight,2024-03-01T08:00:00Z,71.5,after run,\n" +
		"Sleep,2024-03-01T07:00+01:00,7:30:00,,\n" +
		"Mood,2024-03-01 21:00:00,3:Good,,\n" +
		"Mood,2024-03-02,2,,Okay\n" +
		"Coffee,2024-03-02T09:15:00Z,,,\n"

	rows, err := ReadCSV(strings.NewReader(input), now)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, schema.ImportRow{
		Line:        2,
		FeatureName: "Weight",
		DataType:    schema.Numerical,
		Timestamp:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		Value:       71.5,
		Note:        "after run",
	}, rows[0])

	assert.Equal(t, schema.Time, rows[1].DataType)
	assert.Equal(t, 27000.0, rows[1].Value)
	assert.True(t, rows[1].Timestamp.Equal(time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)), "minute precision offsets parse")

	assert.Equal(t, schema.Categorical, rows[2].DataType)
	assert.Equal(t, 3.0, rows[2].Value)
	assert.Equal(t, "Good", rows[2].Label)

	assert.Equal(t, schema.Categorical, rows[3].DataType)
	assert.Equal(t, "Okay", rows[3].Label)

	assert.Equal(t, schema.Numerical, rows[4].DataType)
	assert.Equal(t, 1.0, rows[4].Value, "empty values count once")
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
		want  string
	}{
		{"empty", "", 0, "csv header"},
		{"missing value column", "FeatureName,Timestamp\nA,2024-01-01\n", 0, "missing Value"},
		{"missing name", "FeatureName,Timestamp,Value\n,2024-01-01,1\n", 2, "missing feature name"},
		{"bad timestamp", "FeatureName,Timestamp,Value\nA,2024-01-01,1\nA,someday,2\n", 3, "bad timestamp"},
		{"bad number", "FeatureName,Timestamp,Value\nA,2024-01-01,lots\n", 2, "bad value"},
		{"bad category", "FeatureName,Timestamp,Value\nA,2024-01-01,x:Good\n", 2, "expected index:label"},
		{"label without index", "FeatureName,Timestamp,Value,Label\nA,2024-01-01,,Good\n", 2, "needs an index"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), now)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			var lineErr *LineError
			if tt.line == 0 {
				assert.ErrorIs(t, err, ErrBadHeader)
				return
			}
			require.True(t, errors.As(err, &lineErr))
			assert.Equal(t, tt.line, lineErr.Line)
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw, label string
		value      float64
		wantLabel  string
		dataType   schema.DataType
	}{
		{"12.5", "", 12.5, "", schema.Numerical},
		{"-3", "", -3, "", schema.Numerical},
		{"1:00:00", "", 3600, "", schema.Time},
		{"100:00:30", "", 360030, "", schema.Time},
		{":05:00", "", 300, "", schema.Time},
		{"0:Bad", "", 0, "Bad", schema.Categorical},
		{"2: Fine ", "", 2, "Fine", schema.Categorical},
		{"1:Label", "Override", 1, "Override", schema.Categorical},
		{"4", "Great", 4, "Great", schema.Categorical},
		{"", "", 1, "", schema.Numerical},
	}
	for _, tt := range tests {
		t.Run(tt.raw+"/"+tt.label, func(t *testing.T) {
			value, label, dataType, err := ParseValue(tt.raw, tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.value, value)
			assert.Equal(t, tt.wantLabel, label)
			assert.Equal(t, tt.dataType, dataType)
		})
	}
}

func FuzzParseValue(f *testing.F) {
	for _, seed := range []string{"1", "1:00:00", "3:Good", "", ":", "::", "1e400", "NaN"} {
		f.Add(seed, "")
	}
	f.Fuzz(func(t *testing.T, raw, label string) {
		_, gotLabel, dataType, err := ParseValue(raw, label)
		if err != nil {
			return
		}
		if dataType != schema.Categorical && gotLabel != "" {
			t.Errorf("ParseValue(%q, %q) kept label %q for %s", raw, label, gotLabel, dataType)
		}
	})
}
