package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// WriteBucketResult outputs a bucket start, dispatching based on the output format configured.
func WriteBucketResult(result schema.BucketResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"timestamp", "temporal", "start"}, func(cw *csv.Writer) error {
				return cw.Write(bucketRow(result))
			})
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return errParquetUnsupported("bucket results")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			table := newTable(w, []string{"Timestamp", "Temporal", "Start", "Weekday"})
			row := append(bucketRow(result), result.Start.Weekday().String())
			return renderTable(table, [][]string{row})
		}, "Wrote table")
	}
	return nil
}

func bucketRow(r schema.BucketResult) []string {
	return []string{
		r.Timestamp.Format(contract.DateTimeFormat),
		r.Temporal,
		r.Start.Format(contract.DateTimeFormat),
	}
}
