// Package outwriter renders trackstat results as tables, CSV, JSON and Parquet.
package outwriter

import (
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteGraph prints rendered graph data using the configured output format.
func (ow *OutWriter) WriteGraph(data *schema.LineGraphViewData, cfg *contract.Config, duration time.Duration) error {
	return WriteGraphResults(data, cfg, duration)
}

// WriteEval prints an evaluated expression environment using the configured output format.
func (ow *OutWriter) WriteEval(bindings []schema.EvalBinding, cfg *contract.Config) error {
	return WriteEvalResults(bindings, cfg)
}

// WriteAxis prints solved axis parameters using the configured output format.
func (ow *OutWriter) WriteAxis(result schema.AxisResult, cfg *contract.Config) error {
	return WriteAxisResult(result, cfg)
}

// WriteBucket prints a bucket start using the configured output format.
func (ow *OutWriter) WriteBucket(result schema.BucketResult, cfg *contract.Config) error {
	return WriteBucketResult(result, cfg)
}

// WriteFeatures prints the features of a point store using the configured output format.
func (ow *OutWriter) WriteFeatures(features []schema.FeatureSummary, cfg *contract.Config) error {
	return WriteFeatureList(features, cfg)
}

// WriteImport prints the outcome of an import using the configured output format.
func (ow *OutWriter) WriteImport(summary schema.ImportSummary, cfg *contract.Config, duration time.Duration) error {
	return WriteImportSummary(summary, cfg, duration)
}
