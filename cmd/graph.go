package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/trackstat/core"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/internal/ingest"
	"github.com/spf13/cobra"
)

// graphCmd renders a line graph definition.
var graphCmd = &cobra.Command{
	Use:   "graph <graph-file>",
	Short: "Render a line graph definition from a YAML or JSON file.",
	Long: `Sample every feature of a line graph, apply its averaging and plotting modes,
and solve the y axis.

The graph file lists the features to plot by feature_id or by name. A feature can
instead carry an expression whose inputs bind stored features to variables.

Examples:
  # Render a graph as a table
  trackstat graph weight.yaml

  # Render the last 90 days ending a week ago as JSON
  trackstat graph weight.yaml --duration "90 days" --end "1 week ago" --output json

  # Re-render whenever an exported CSV changes
  trackstat graph weight.yaml --watch export.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		watchPath, _ := cmd.Flags().GetString("watch")
		if watchPath == "" {
			return renderGraphFile(rootCtx, args[0])
		}

		// Render once with the current file, then on every change
		refresh := func(ctx context.Context) error {
			if _, err := importFile(ctx, watchPath); err != nil {
				return err
			}
			return renderGraphFile(ctx, args[0])
		}
		if err := refresh(rootCtx); err != nil {
			contract.LogWarn("Initial render failed", err)
		}
		return ingest.Watch(rootCtx, watchPath, ingest.DefaultDebounce, refresh)
	},
}

// renderGraphFile loads, validates and prints one graph definition.
func renderGraphFile(ctx context.Context, path string) error {
	raw, err := contract.LoadGraph(path)
	if err != nil {
		return err
	}
	graph, err := raw.Validate(ctx, cacheManager.GetPointStore(), time.Now())
	if err != nil {
		return fmt.Errorf("invalid graph definition %s: %w", path, err)
	}
	return core.ExecuteGraph(ctx, cfg, cacheManager, graph)
}
