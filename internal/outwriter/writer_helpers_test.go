package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"weight two places", 2, 71.456, "71.46"},
		{"steps whole", 0, 8432.6, "8433"},
		{"negative delta", 3, -0.0625, "-0.062"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, fmtSeconds := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "1h 01m 01s", fmtSeconds(3661))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]any{"feature": "Weight", "points": 4}))
	assert.Equal(t, "{\n  \"feature\": \"Weight\",\n  \"points\": 4\n}\n", buf.String())

	buf.Reset()
	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected string
	}{
		{
			name:     "no points",
			expected: "feature,timestamp,y\n",
		},
		{
			name: "series rows",
			rows: [][]string{
				{"Weight", "2024-03-01T08:00:00Z", "71.5"},
				{"Weight", "2024-03-02T08:00:00Z", "71.2"},
			},
			expected: "feature,timestamp,y\nWeight,2024-03-01T08:00:00Z,71.5\nWeight,2024-03-02T08:00:00Z,71.2\n",
		},
		{
			name:     "quoted label",
			rows:     [][]string{{"Mood", "2024-03-01T08:00:00Z", "Good, rested"}},
			expected: "feature,timestamp,y\nMood,2024-03-01T08:00:00Z,\"Good, rested\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, []string{"feature", "timestamp", "y"}, func(w *csv.Writer) error {
				return w.WriteAll(tt.rows)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	err := writeCSVWithHeader(io.Discard, []string{"feature"}, func(*csv.Writer) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(w io.Writer) error {
			called = true
			return nil
		}, "Wrote axis")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "graph.json")
		err := writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, map[string]any{"series": 2})
		}, "Wrote graph")
		require.NoError(t, err)

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(content, &got))
		assert.Equal(t, float64(2), got["series"])
	})

	t.Run("writer error", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "x.csv"), func(io.Writer) error {
			return assert.AnError
		}, "Wrote")
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("bad path", func(t *testing.T) {
		err := writeWithFile("/nonexistent/dir/out.csv", func(io.Writer) error { return nil }, "Wrote")
		require.Error(t, err)
	})
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	table := newTable(&buf, []string{"Name", "Value"})
	require.NoError(t, renderTable(table, [][]string{{"steps", "1200"}, {"sleep", "7h 30m"}}))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "NAME")
	assert.Contains(t, out, "steps")
	assert.Contains(t, out, "7h 30m")
}

func TestErrParquetUnsupported(t *testing.T) {
	assert.EqualError(t, errParquetUnsupported("axis results"), "parquet output is not supported for axis results")
}
