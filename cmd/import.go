package cmd

import (
	"context"
	"time"

	"github.com/huangsam/trackstat/internal/ingest"
	"github.com/huangsam/trackstat/internal/outwriter"
	"github.com/huangsam/trackstat/schema"
	"github.com/spf13/cobra"
)

// importCmd loads datapoints into the point store.
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import datapoints from a CSV or Parquet file.",
	Long: `Import datapoints into the configured point store.

CSV files need the header FeatureName,Timestamp,Value with optional Note and Label
columns. Values written as h:mm:ss become durations, values written as index:label
become categorical, and an empty value counts as 1. Parquet files use the layout
written by 'trackstat store export'.

Features are created on first sight. A point at the same instant as an existing one
replaces it, so importing a file twice is safe.

Examples:
  trackstat import export.csv
  trackstat import backup.parquet --store-backend postgresql
  trackstat import export.csv --watch`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")
		run := func(ctx context.Context) error {
			start := time.Now()
			summary, err := importFile(ctx, args[0])
			if err != nil {
				return err
			}
			return outwriter.NewOutWriter().WriteImport(summary, cfg, time.Since(start))
		}
		if err := run(rootCtx); err != nil || !watch {
			return err
		}
		return ingest.Watch(rootCtx, args[0], ingest.DefaultDebounce, run)
	},
}

// importFile imports one file into the managed point store.
func importFile(ctx context.Context, path string) (schema.ImportSummary, error) {
	return ingest.NewImporter(cacheManager.GetPointStore()).ImportFile(ctx, path)
}
