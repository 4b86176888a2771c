package schema

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatSeconds renders a duration given in seconds as "1d 2h 03m 04s".
// Leading zero units are omitted and negative values keep their sign.
func FormatSeconds(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Sprintf("%v", seconds)
	}
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	total := int64(math.Round(seconds))
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	secs := total % 60

	var parts []string
	switch {
	case days > 0:
		parts = append(parts, fmt.Sprintf("%dd", days), fmt.Sprintf("%dh", hours), fmt.Sprintf("%02dm", minutes))
	case hours > 0:
		parts = append(parts, fmt.Sprintf("%dh", hours), fmt.Sprintf("%02dm", minutes))
	case minutes > 0:
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%02ds", secs))
	if len(parts) == 1 {
		parts[0] = fmt.Sprintf("%ds", secs)
	}
	return sign + strings.Join(parts, " ")
}

// TruncateLabel shortens a label to maxWidth runes with an ellipsis suffix.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
}

// UTCOffset returns the offset of ts from UTC in seconds.
func UTCOffset(ts time.Time) int {
	_, offset := ts.Zone()
	return offset
}

// ZonedTime rebuilds an instant stored as Unix milliseconds plus its UTC offset in seconds.
func ZonedTime(millis int64, offsetSeconds int) time.Time {
	t := time.UnixMilli(millis)
	if offsetSeconds == 0 {
		return t.UTC()
	}
	return t.In(time.FixedZone("", offsetSeconds))
}
