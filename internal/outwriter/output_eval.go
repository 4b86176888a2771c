package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// WriteEvalResults outputs an expression environment, dispatching based on the output format configured.
func WriteEvalResults(bindings []schema.EvalBinding, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, bindings)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResultsForEval(w, bindings, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported("expression results")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvalTable(w, bindings, cfg, fmtFloat)
		}, "Wrote table")
	}
	return nil
}

// bindingValue renders the most precise scalar form of a binding.
func bindingValue(b schema.EvalBinding, fmtFloat func(float64) string) string {
	switch {
	case b.Number != nil:
		return fmtFloat(*b.Number)
	case b.Duration != "":
		return b.Duration
	case b.Text != "":
		return b.Text
	default:
		return b.Summary
	}
}

func writeCSVResultsForEval(w io.Writer, bindings []schema.EvalBinding, fmtFloat func(float64) string) error {
	header := []string{"name", "kind", "value", "data_type", "points"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, b := range bindings {
			row := []string{b.Name, b.Kind, bindingValue(b, fmtFloat), b.DataType, strconv.Itoa(len(b.Points))}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeEvalTable(w io.Writer, bindings []schema.EvalBinding, cfg *contract.Config, fmtFloat func(float64) string) error {
	width := GetMaxTableNameWidth(cfg, 20)
	table := newTable(w, []string{"Name", "Kind", "Value"})
	var rows [][]string
	for _, b := range bindings {
		rows = append(rows, []string{
			b.Name,
			b.Kind,
			contract.TruncateName(bindingValue(b, fmtFloat), width),
		})
	}
	if err := renderTable(table, rows); err != nil {
		return err
	}

	// Series are summarized above; list their latest points for a quick look.
	for _, b := range bindings {
		if len(b.Points) == 0 {
			continue
		}
		last := b.Points[len(b.Points)-1]
		fmt.Fprintf(w, "%s: %d points, last %s at %s\n",
			b.Name, len(b.Points), fmtFloat(last.Value), last.Timestamp.Format(contract.DateTimeFormat))
	}
	return nil
}
