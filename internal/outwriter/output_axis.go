package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// WriteAxisResult outputs solved axis parameters, dispatching based on the output format configured.
func WriteAxisResult(result schema.AxisResult, cfg *contract.Config) error {
	fmtFloat, fmtSeconds := createFormatters(cfg.Precision)
	fmtLabel := fmtFloat
	if result.TimeBased {
		fmtLabel = fmtSeconds
	}

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForAxis(w, result, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported("axis results")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAxisTable(w, result, fmtFloat, fmtLabel)
		}, "Wrote table")
	}
	return nil
}

func writeCSVResultsForAxis(w io.Writer, r schema.AxisResult, fmtFloat func(float64) string) error {
	header := []string{"y_min", "y_max", "bounds_min", "bounds_max", "n_intervals", "interval", "is_good_solution", "percentage_range_used", "labels"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		labels := make([]string, len(r.Labels))
		for i, l := range r.Labels {
			labels[i] = fmtFloat(l)
		}
		return cw.Write([]string{
			fmtFloat(r.YMin),
			fmtFloat(r.YMax),
			fmtFloat(r.Params.BoundsMin),
			fmtFloat(r.Params.BoundsMax),
			strconv.Itoa(r.Params.NIntervals),
			fmtFloat(r.Interval),
			strconv.FormatBool(r.IsGoodSolution),
			fmtFloat(r.PercentageRangeUsed),
			strings.Join(labels, "|"),
		})
	})
}

func writeAxisTable(w io.Writer, r schema.AxisResult, fmtFloat, fmtLabel func(float64) string) error {
	table := newTable(w, []string{"Line", "Value"})
	var rows [][]string
	for i := len(r.Labels) - 1; i >= 0; i-- {
		rows = append(rows, []string{strconv.Itoa(i + 1), fmtLabel(r.Labels[i])})
	}
	if err := renderTable(table, rows); err != nil {
		return err
	}

	fmt.Fprintf(w, "Range %s to %s fits bounds %s to %s in %d lines\n",
		fmtLabel(r.YMin), fmtLabel(r.YMax), fmtLabel(r.Params.BoundsMin), fmtLabel(r.Params.BoundsMax), r.Params.NIntervals)
	if r.IsGoodSolution {
		fmt.Fprintf(w, "Interval %s uses %s%% of the axis\n", fmtLabel(r.Interval), fmtFloat(r.PercentageRangeUsed*100))
	} else {
		fmt.Fprintln(w, "No good interval found, the range is subdivided evenly")
	}
	return nil
}
