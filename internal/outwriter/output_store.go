package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// WriteFeatureList outputs stored features, dispatching based on the output format configured.
func WriteFeatureList(features []schema.FeatureSummary, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, features)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForFeatures(w, features)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported("feature lists, use 'store export'")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFeatureTable(w, features, cfg)
		}, "Wrote table")
	}
	return nil
}

func formatOptionalTime(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(contract.DateTimeFormat)
}

func writeCSVResultsForFeatures(w io.Writer, features []schema.FeatureSummary) error {
	header := []string{"id", "name", "data_type", "points", "first", "last"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range features {
			row := []string{
				strconv.FormatInt(f.ID, 10),
				f.Name,
				f.DataType.String(),
				strconv.Itoa(f.Points),
				formatOptionalTime(f.First),
				formatOptionalTime(f.Last),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFeatureTable(w io.Writer, features []schema.FeatureSummary, cfg *contract.Config) error {
	width := GetMaxTableNameWidth(cfg, 75)
	table := newTable(w, []string{"ID", "Name", "Type", "Points", "Status", "First", "Last"})
	var rows [][]string
	total := 0
	for _, f := range features {
		status := contract.GetPlainLabel(f.Points)
		if cfg.UseColors {
			status = contract.GetColorLabel(f.Points)
		}
		rows = append(rows, []string{
			strconv.FormatInt(f.ID, 10),
			contract.TruncateName(f.Name, width),
			f.DataType.String(),
			strconv.Itoa(f.Points),
			status,
			formatOptionalTime(f.First),
			formatOptionalTime(f.Last),
		})
		total += f.Points
	}
	if err := renderTable(table, rows); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d features holding %d points. Store backend: %s\n", len(features), total, cfg.StoreBackend)
	return nil
}

// WriteImportSummary outputs the outcome of an import.
func WriteImportSummary(summary schema.ImportSummary, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	}
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "📥 Imported %d of %d rows from %s (%d new features) in %v\n",
			summary.PointsWritten, summary.RowsRead, summary.Source, summary.FeaturesCreated, duration)
		return err
	}, "Wrote import summary")
}

// WriteDataPointsCSV writes stored points in the import format, so the file can be imported again.
// Time values are written as h:mm:ss and categorical values as index:label.
func WriteDataPointsCSV(w io.Writer, records []schema.DataPointRecord) error {
	header := []string{"FeatureName", "Timestamp", "Value", "Note"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range records {
			dataType, err := schema.ParseDataType(r.DataType)
			if err != nil {
				return fmt.Errorf("feature %s: %w", r.FeatureName, err)
			}
			row := []string{
				r.FeatureName,
				r.Timestamp.Format(time.RFC3339Nano),
				formatExportValue(r.Value, r.Label, dataType),
				r.Note,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func formatExportValue(value float64, label string, dataType schema.DataType) string {
	switch dataType {
	case schema.Time:
		return formatClock(value)
	case schema.Categorical:
		return strconv.FormatFloat(value, 'f', -1, 64) + ":" + label
	default:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
}

// formatClock renders seconds as h:mm:ss.
func formatClock(seconds float64) string {
	total := int64(math.Round(seconds))
	sign := ""
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%d:%02d:%02d", sign, total/3600, total%3600/60, total%60)
}
