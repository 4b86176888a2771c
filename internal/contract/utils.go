package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Status labels for stored data health.
const (
	EmptyValue  = "Empty"  // No points at all
	SparseValue = "Sparse" // Too few points to plot
	ReadyValue  = "Ready"  // Enough points to plot
)

// Color variables for console output.
var (
	EmptyColor  = color.New(color.FgRed, color.Bold) // EmptyColor flags features with no data.
	SparseColor = color.New(color.FgYellow)          // SparseColor flags features that cannot be plotted yet.
	ReadyColor  = color.New(color.FgGreen)           // ReadyColor marks plottable features.
	HeaderColor = color.New(color.FgCyan, color.Bold)
)

// seriesPalette maps a feature color index onto terminal colors.
var seriesPalette = []*color.Color{
	color.New(color.FgRed),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
	color.New(color.FgHiRed),
	color.New(color.FgHiGreen),
	color.New(color.FgHiYellow),
	color.New(color.FgHiBlue),
	color.New(color.FgHiMagenta),
	color.New(color.FgHiCyan),
}

// GetPlainLabel returns a plain health label for a feature holding count points.
func GetPlainLabel(count int) string {
	switch {
	case count <= 0:
		return EmptyValue
	case count < 2:
		return SparseValue
	default:
		return ReadyValue
	}
}

// GetColorLabel returns the health label colored for console output.
func GetColorLabel(count int) string {
	text := GetPlainLabel(count)
	switch text {
	case EmptyValue:
		return EmptyColor.Sprint(text)
	case SparseValue:
		return SparseColor.Sprint(text)
	default:
		return ReadyColor.Sprint(text)
	}
}

// SeriesColor returns the console color for a feature color index. Indexes wrap around the palette.
func SeriesColor(index int) *color.Color {
	if index < 0 {
		index = -index
	}
	return seriesPalette[index%len(seriesPalette)]
}

// SelectOutputFile returns the appropriate file handle for output.
// An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// MatchesAny returns true if the feature name matches any of the patterns.
// Patterns with wildcard characters (*, ?, [ ]) use filepath.Match, patterns ending in '*'
// without other wildcards act as prefixes, and anything else must match case-insensitively.
func MatchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			if ok, err := filepath.Match(p, lower); err == nil && ok {
				return true
			}
			if strings.HasSuffix(p, "*") && !strings.ContainsAny(strings.TrimSuffix(p, "*"), "*?[") &&
				strings.HasPrefix(lower, strings.TrimSuffix(p, "*")) {
				return true
			}
			continue
		}
		if lower == p {
			return true
		}
	}
	return false
}

// SplitList splits a comma separated flag value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// ParseInputBindings parses "name=featureID" pairs into expression inputs.
func ParseInputBindings(pairs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid input binding '%s'. Expected name=featureID", pair)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid feature id in '%s': %w", pair, err)
		}
		if _, dup := out[name]; dup {
			return nil, fmt.Errorf("input '%s' is bound twice", name)
		}
		out[name] = id
	}
	return out, nil
}

// GetDBFilePath returns the path to the SQLite DB file for cached results.
func GetDBFilePath() string {
	return homeFile(".trackstat_cache.db")
}

// GetStoreDBFilePath returns the path to the SQLite DB file for stored datapoints.
func GetStoreDBFilePath() string {
	return homeFile(".trackstat_store.db")
}

func homeFile(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(homeDir, name)
}

// TruncateName shortens a name to maxWidth runes, marking the cut with "...".
func TruncateName(name string, maxWidth int) string {
	r := []rune(name)
	if maxWidth <= 0 || len(r) <= maxWidth {
		return name
	}
	if maxWidth <= 3 {
		return string(r[:maxWidth])
	}
	return string(r[:maxWidth-3]) + "..."
}

// ParseBoolString parses yes/no/true/false/1/0.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
