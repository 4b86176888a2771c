package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/internal/parquet"
	"github.com/huangsam/trackstat/schema"
)

// WriteGraphResults outputs rendered graph data, dispatching based on the output format configured.
func WriteGraphResults(data *schema.LineGraphViewData, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtSeconds := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, data)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForGraph(w, data, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		rows := parquet.ConvertViewData(data)
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteGraphPoints(w, rows)
		}, fmt.Sprintf("Wrote %d graph points as Parquet", len(rows))); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeGraphTable(w, data, cfg, fmtFloat, fmtSeconds, duration)
		}, "Wrote table")
	}
	return nil
}

// writeCSVResultsForGraph writes one row per plotted point.
func writeCSVResultsForGraph(w io.Writer, data *schema.LineGraphViewData, fmtFloat func(float64) string) error {
	header := []string{"feature", "color_index", "timestamp", "x", "y"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, series := range data.Series {
			for i, p := range series.Points {
				row := []string{
					series.Feature.Name,
					strconv.Itoa(series.Feature.ColorIndex),
					pointTime(data, series, i).Format(contract.DateTimeFormat),
					strconv.FormatFloat(p.X, 'f', -1, 64),
					fmtFloat(p.Y),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// pointTime returns the timestamp of the i-th point of a series.
func pointTime(data *schema.LineGraphViewData, series schema.PlottedSeries, i int) time.Time {
	if i < len(series.Times) {
		return series.Times[i]
	}
	return data.EndTime.Add(time.Duration(series.Points[i].X) * time.Millisecond)
}

// writeGraphTable prints a summary of every series followed by the plotted points.
func writeGraphTable(w io.Writer, data *schema.LineGraphViewData, cfg *contract.Config, fmtFloat, fmtSeconds func(float64) string, duration time.Duration) error {
	title := data.GraphName
	if title == "" {
		title = "Graph"
	}
	if cfg.UseColors {
		title = contract.HeaderColor.Sprint(title)
	}
	fmt.Fprintf(w, "%s (ending %s)\n", title, data.EndTime.Format(contract.DateTimeFormat))

	nameWidth := GetMaxTableNameWidth(cfg, 60)
	formatY := func(s schema.PlottedSeries, y float64) string {
		if s.Feature.DurationPlottingMode == schema.DurationPlotIfPossible {
			return fmtSeconds(y)
		}
		return fmtFloat(y)
	}
	featureName := func(s schema.PlottedSeries) string {
		name := contract.TruncateName(s.Feature.Name, nameWidth)
		if cfg.UseColors {
			return contract.SeriesColor(s.Feature.ColorIndex).Sprint(name)
		}
		return name
	}

	summary := newTable(w, []string{"#", "Feature", "Points", "Status", "Min", "Max", "Last"})
	var rows [][]string
	for i, s := range data.Series {
		status := contract.GetPlainLabel(len(s.Points))
		if cfg.UseColors {
			status = contract.GetColorLabel(len(s.Points))
		}
		row := []string{strconv.Itoa(i + 1), featureName(s), strconv.Itoa(len(s.Points)), status, "-", "-", "-"}
		if s.Plottable {
			row[4] = formatY(s, s.MinMax.MinY)
			row[5] = formatY(s, s.MinMax.MaxY)
			row[6] = formatY(s, s.Points[len(s.Points)-1].Y)
		}
		rows = append(rows, row)
	}
	if err := renderTable(summary, rows); err != nil {
		return err
	}

	if data.HasPlottableData {
		points := newTable(w, []string{"Feature", "Time", "Offset", "Value"})
		rows = nil
		for _, s := range data.Series {
			for j, p := range s.Points {
				offset := time.Duration(p.X) * time.Millisecond
				rows = append(rows, []string{
					featureName(s),
					pointTime(data, s, j).Format(contract.DateTimeFormat),
					offset.String(),
					formatY(s, p.Y),
				})
			}
		}
		if err := renderTable(points, rows); err != nil {
			return err
		}
		fmt.Fprintf(w, "Y axis %s to %s in %d lines (%s), x labels every %v\n",
			fmtFloat(data.YAxis.BoundsMin), fmtFloat(data.YAxis.BoundsMax), data.YAxis.NIntervals, data.YRangeType, data.XAxisInterval)
	} else {
		fmt.Fprintln(w, "No feature has enough data to plot.")
	}

	fmt.Fprintf(w, "Graph rendered in %v with %d workers. Store backend: %s\n", duration, cfg.Workers, cfg.StoreBackend)
	return nil
}
