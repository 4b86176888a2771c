package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/internal/parquet"
	"github.com/huangsam/trackstat/schema"
)

// DefaultBatchSize is the number of points written per store call.
const DefaultBatchSize = 1000

// Importer writes parsed rows into a point store, creating features on first sight.
type Importer struct {
	Store     contract.PointStore
	BatchSize int
	Now       func() time.Time
}

// NewImporter returns an importer over the store with default settings.
func NewImporter(store contract.PointStore) *Importer {
	return &Importer{Store: store, BatchSize: DefaultBatchSize, Now: time.Now}
}

func (im *Importer) now() time.Time {
	if im.Now == nil {
		return time.Now()
	}
	return im.Now()
}

// ImportFile reads a .csv or .parquet file and imports its rows.
func (im *Importer) ImportFile(ctx context.Context, path string) (schema.ImportSummary, error) {
	var rows []schema.ImportRow
	if strings.EqualFold(filepath.Ext(path), ".parquet") {
		data, err := parquet.ReadDataPointsParquet(path)
		if err != nil {
			return schema.ImportSummary{Source: path}, err
		}
		rows = parquet.ToImportRows(data)
	} else {
		f, err := os.Open(path)
		if err != nil {
			return schema.ImportSummary{Source: path}, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		if rows, err = ReadCSV(f, im.now()); err != nil {
			return schema.ImportSummary{Source: path, RowsRead: len(rows)}, err
		}
	}
	return im.ImportRows(ctx, path, rows)
}

// ImportRows writes rows in batches. Every row of a feature must share the feature's data type.
// Batches written before an error stay in the store.
func (im *Importer) ImportRows(ctx context.Context, source string, rows []schema.ImportRow) (schema.ImportSummary, error) {
	summary := schema.ImportSummary{Source: source, RowsRead: len(rows)}
	batchSize := im.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	features := make(map[string]schema.Feature)
	batch := make([]schema.DataPoint, 0, min(batchSize, len(rows)))
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := im.Store.InsertPoints(ctx, batch)
		if err != nil {
			return err
		}
		summary.PointsWritten += n
		batch = batch[:0]
		return nil
	}

	for _, row := range rows {
		feature, ok := features[row.FeatureName]
		if !ok {
			var created bool
			var err error
			feature, created, err = im.Store.UpsertFeature(ctx, row.FeatureName, row.DataType)
			if err != nil {
				return summary, &LineError{Line: row.Line, Err: err}
			}
			if created {
				summary.FeaturesCreated++
			}
			features[row.FeatureName] = feature
		}
		if feature.DataType != row.DataType {
			err := fmt.Errorf("inconsistent data type: feature %q is %s but the value is %s", feature.Name, feature.DataType, row.DataType)
			if ferr := flush(); ferr != nil {
				contract.LogWarn("failed to write rows before the inconsistent one", ferr)
			}
			return summary, &LineError{Line: row.Line, Err: err}
		}

		batch = append(batch, schema.DataPoint{
			Timestamp: row.Timestamp,
			FeatureID: feature.ID,
			Value:     row.Value,
			Label:     row.Label,
			Note:      row.Note,
		})
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return summary, err
			}
		}
	}
	if err := flush(); err != nil {
		return summary, err
	}

	summary.Finished = im.now()
	contract.LogInfo("imported %d points into %d features from %s", summary.PointsWritten, len(features), source)
	return summary, nil
}
