// Package cmd defines the command-line interface for trackstat.
package cmd

import (
	"github.com/huangsam/trackstat/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(axisCmd)
	rootCmd.AddCommand(bucketCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)
	storeCmd.AddCommand(storeFeaturesCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	defaults := contract.DefaultRawInput()
	rootCmd.PersistentFlags().String("output", defaults.Output, "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", defaults.Precision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", defaults.Color, "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("workers", defaults.Workers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("store-backend", defaults.StoreBackend, "Point store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Point store connection string (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-backend", defaults.CacheBackend, "Result cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Result cache connection string (must differ from store-db-connect)")
	rootCmd.PersistentFlags().Int("sample-cache-size", defaults.SampleCacheSize, "Number of sampled feature reads kept in memory (0 disables)")
	rootCmd.PersistentFlags().String("first-day-of-week", defaults.FirstDayOfWeek, "First day of weekly buckets")
	rootCmd.PersistentFlags().String("start-time-of-day", "", "Start of daily buckets as HH:MM")
	rootCmd.PersistentFlags().String("end", "", "Override graph end date in ISO8601 or time ago")
	rootCmd.PersistentFlags().String("duration", "", "Override graph duration (e.g., '30 days', '720h')")
	rootCmd.PersistentFlags().String("log-level", defaults.LogLevel, "Log verbosity: debug or info or warn or error")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Flags local to a command are read from the command itself since names repeat across commands
	graphCmd.Flags().String("watch", "", "Re-import this CSV file and re-render whenever it changes")
	evalCmd.Flags().StringSlice("input", nil, "Bind a stored feature as name=featureID (repeatable)")
	axisCmd.Flags().Bool("time", false, "Values are durations in seconds")
	axisCmd.Flags().Bool("fixed", false, "Keep the given bounds instead of expanding them")
	axisCmd.Flags().Bool("strict", false, "Fail when no interval covers the range well")
	importCmd.Flags().Bool("watch", false, "Keep importing the file whenever it changes")

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
