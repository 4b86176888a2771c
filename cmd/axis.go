package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/trackstat/core"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/spf13/cobra"
)

// axisCmd solves y axis parameters for a value range.
var axisCmd = &cobra.Command{
	Use:   "axis <min> <max>",
	Short: "Choose y axis bounds and line count for a value range.",
	Long: `Find the interval that spreads between 6 and 12 lines over the range while using
as much of the chart as possible.

Examples:
  # Weight between 68.2 and 73.9
  trackstat axis 68.2 73.9

  # Sleep durations in seconds, labelled as times
  trackstat axis 21600 32400 --time

  # Keep the given bounds and fail if no interval fits
  trackstat axis 0 100 --fixed --strict`,
	Args:    cobra.ExactArgs(2),
	PreRunE: configSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		yMin, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid min '%s': %w", args[0], err)
		}
		yMax, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid max '%s': %w", args[1], err)
		}
		if yMin > yMax {
			return fmt.Errorf("min must not exceed max (received %g, %g)", yMin, yMax)
		}
		timeBased, _ := cmd.Flags().GetBool("time")
		fixed, _ := cmd.Flags().GetBool("fixed")
		strict, _ := cmd.Flags().GetBool("strict")
		return core.ExecuteAxis(cfg, yMin, yMax, timeBased, fixed, strict)
	},
}

// bucketCmd prints where the bucket containing a timestamp begins.
var bucketCmd = &cobra.Command{
	Use:   "bucket <timestamp> <temporal>",
	Short: "Print the start of the aggregation bucket containing a timestamp.",
	Long: `Apply the configured first day of week and start time of day to find the bucket
a timestamp falls into.

Examples:
  trackstat bucket 2024-03-05T15:30:00Z 1w
  trackstat bucket "2 days ago" 1mo --first-day-of-week sunday
  trackstat bucket 2024-03-05T05:30:00Z 1d --start-time-of-day 06:00`,
	Args:    cobra.ExactArgs(2),
	PreRunE: configSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		ts, err := contract.ParseTimestamp(args[0], time.Now())
		if err != nil {
			return fmt.Errorf("invalid timestamp '%s'. Expected absolute ISO8601 or 'N [units] ago': %w", args[0], err)
		}
		return core.ExecuteBucket(cfg, ts, args[1])
	},
}

