package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/trackstat/core"
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/spf13/cobra"
)

// evalCmd evaluates an expression against stored features.
var evalCmd = &cobra.Command{
	Use:   "eval <code|@file>",
	Short: "Evaluate an expression and print every variable it defines.",
	Long: `Run an expression with stored features bound as datapoint series.

Each --input binds a variable name to a feature id. Every point of the feature is
read, oldest first.

Examples:
  # Plain arithmetic
  trackstat eval "var a = 2 * 21"

  # Change between consecutive points of feature 4
  trackstat eval "var result = Delta(weight)" --input weight=4

  # Code from a file
  trackstat eval @weekly.expr --input sleep=2 --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := readCode(args[0])
		if err != nil {
			return err
		}
		pairs, _ := cmd.Flags().GetStringSlice("input")
		inputs, err := contract.ParseInputBindings(pairs)
		if err != nil {
			return err
		}
		return core.ExecuteEval(rootCtx, cfg, cacheManager.GetPointStore(), code, inputs)
	},
}

// readCode returns the argument itself, or the contents of the file it names after '@'.
func readCode(arg string) (string, error) {
	path, ok := strings.CutPrefix(arg, "@")
	if !ok {
		return arg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read expression file: %w", err)
	}
	return string(data), nil
}
