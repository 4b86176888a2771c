package iocache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/internal/outwriter"
	"github.com/huangsam/trackstat/internal/parquet"
	"github.com/huangsam/trackstat/schema"
)

// ExecuteStoreExport writes every stored point to outputFile. A .csv file gets the import
// format; anything else is written as Parquet.
func ExecuteStoreExport(ctx context.Context, store contract.PointStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalPoints == 0 {
		return errors.New("no datapoints found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total features: %d\n", status.TotalFeatures)
	_, _ = fmt.Fprintf(w, "Total datapoints: %d\n", status.TotalPoints)

	records, err := store.ExportPoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve datapoints: %w", err)
	}

	if strings.EqualFold(filepath.Ext(outputFile), ".csv") {
		err = writeExportCSV(records, outputFile)
	} else {
		err = parquet.WriteDataPointsParquet(parquet.ConvertDataPointRecords(records), outputFile)
	}
	if err != nil {
		return fmt.Errorf("failed to write datapoints: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d datapoints to: %s\n", len(records), outputFile)
	return nil
}

func writeExportCSV(records []schema.DataPointRecord, outputFile string) error {
	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := outwriter.WriteDataPointsCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
