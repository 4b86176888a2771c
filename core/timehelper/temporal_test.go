package timehelper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemporal(t *testing.T) {
	tests := []struct {
		in      string
		want    Temporal
		wantErr bool
	}{
		{"1h", DurationOf(time.Hour), false},
		{"90m", DurationOf(90 * time.Minute), false},
		{"7d", DurationOf(7 * day), false},
		{"1 day", DurationOf(day), false},
		{"2w", DurationOf(14 * day), false},
		{"1mo", Months(1), false},
		{"3 months", Months(3), false},
		{"1y", Years(1), false},
		{"2 years", Years(2), false},
		{"P1M", Months(1), false},
		{"p1y2m", PeriodOf(1, 2, 0), false},
		{"P1W", Weeks(1), false},
		{"P3M1D", PeriodOf(0, 3, 1), false},
		{"", Temporal{}, true},
		{"P", Temporal{}, true},
		{"soon", Temporal{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTemporal(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTemporalString(t *testing.T) {
	assert.Equal(t, "1h0m0s", DurationOf(time.Hour).String())
	assert.Equal(t, "7d", DurationOf(7*day).String())
	assert.Equal(t, "P1M", Months(1).String())
	assert.Equal(t, "P1Y", Years(1).String())
	assert.Equal(t, "P3M1D", PeriodOf(0, 3, 1).String())
	assert.Equal(t, "P0D", PeriodOf(0, 0, 0).String())
}

func TestTemporalAddAndSubtract(t *testing.T) {
	jan31 := time.Date(2020, 1, 31, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2020, 3, 2, 10, 0, 0, 0, time.UTC), Months(1).AddTo(jan31)) // Go normalizes Feb 31
	assert.Equal(t, time.Date(2020, 2, 7, 10, 0, 0, 0, time.UTC), DurationOf(7*day).AddTo(jan31))
	assert.Equal(t, time.Date(2020, 1, 31, 11, 0, 0, 0, time.UTC), DurationOf(time.Hour).AddTo(jan31))
	assert.Equal(t, time.Date(2019, 1, 31, 10, 0, 0, 0, time.UTC), Years(1).SubtractFrom(jan31))
	assert.Equal(t, time.Date(2020, 1, 30, 10, 0, 0, 0, time.UTC), DurationOf(day).SubtractFrom(jan31))
}

func TestTemporalIsPositive(t *testing.T) {
	assert.True(t, DurationOf(time.Second).IsPositive())
	assert.False(t, DurationOf(0).IsPositive())
	assert.True(t, Months(1).IsPositive())
	assert.False(t, PeriodOf(0, 0, 0).IsPositive())
	assert.False(t, PeriodOf(1, -1, 0).IsPositive())
}
