package schema

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSeconds(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0s"},
		{7, "7s"},
		{65, "1m 05s"},
		{3725, "1h 02m 05s"},
		{90061, "1d 1h 01m 01s"},
		{-65, "-1m 05s"},
		{59.6, "1m 00s"},
		{math.Inf(1), "+Inf"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSeconds(tt.in))
		})
	}
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "short", TruncateLabel("short", 10))
	assert.Equal(t, "sleep d...", TruncateLabel("sleep duration", 10))
	assert.Equal(t, "abcdef", TruncateLabel("abcdef", 3)) // too small to truncate
}

func TestZonedTime(t *testing.T) {
	brisbane := time.FixedZone("AEST", 10*3600)
	tests := []struct {
		name string
		in   time.Time
	}{
		{"utc", time.Date(2020, time.July, 9, 8, 0, 0, 0, time.UTC)},
		{"east", time.Date(2020, time.July, 9, 8, 0, 0, 0, brisbane)},
		{"west half hour", time.Date(2020, time.July, 9, 8, 0, 0, 0, time.FixedZone("", -(9*3600 + 1800)))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ZonedTime(tt.in.UnixMilli(), UTCOffset(tt.in))
			assert.True(t, tt.in.Equal(got))
			assert.Equal(t, UTCOffset(tt.in), UTCOffset(got))
			assert.Equal(t, tt.in.Format("2006-01-02 15:04"), got.Format("2006-01-02 15:04"))
		})
	}
	assert.Equal(t, time.UTC, ZonedTime(0, 0).Location())
}
