package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/internal/iocache"
	"github.com/huangsam/trackstat/internal/outwriter"
	"github.com/huangsam/trackstat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// storeConfig loads the store settings without opening the store.
func storeConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if _, ok := schema.ValidStoreBackends[backend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// storeSetup opens the point store alone, for commands that inspect it.
func storeSetup(_ *cobra.Command, _ []string) error {
	if err := configSetup(); err != nil {
		return err
	}
	if err := iocache.InitCaching(cfg.StoreBackend, cfg.StoreDBConnect, schema.NoneBackend, "", 0); err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	return nil
}

// storeConfigWrapper wraps storeConfig to provide PreRunE for store commands that must not open it.
func storeConfigWrapper(_ *cobra.Command, _ []string) error {
	return storeConfig()
}

// storeDBFilePath returns the SQLite file of the point store.
func storeDBFilePath() string {
	if cfg.StoreDBConnect != "" {
		return cfg.StoreDBConnect
	}
	return contract.GetStoreDBFilePath()
}

// storeCmd focused on point store management.
//
// Note: Store subcommands use minimal initialization instead of the full sharedSetup,
// so they never open the result cache.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the point store that holds features and datapoints",
	Long: `Manage the point store that graphs and expressions read from.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status   - Show store statistics and connection info
  features - List features with their point counts
  export   - Export every datapoint to a Parquet file
  migrate  - Run schema migrations
  clear    - Remove all features and datapoints

Examples:
  # Check store status
  trackstat store status

  # Keep a backup of the store
  trackstat store export --output-file backup.parquet`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, revision, feature and point counts, the time range of stored
points and the row count of each table.

Examples:
  trackstat store status
  TRACKSTAT_STORE_BACKEND=postgresql TRACKSTAT_STORE_DB_CONNECT="..." trackstat store status`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetPointStore().GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iocache.PrintStoreStatus(os.Stdout, status)
	},
}

// storeFeaturesCmd lists the stored features.
var storeFeaturesCmd = &cobra.Command{
	Use:   "features",
	Short: "List stored features with their point counts",
	Long: `List every feature with its id, data type, number of points and the first and last
point times. Use the ids to bind expression inputs.

Examples:
  trackstat store features
  trackstat store features --output csv`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		features, err := iocache.Manager.GetPointStore().SummarizeFeatures(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to list features", err)
		}
		if err := outwriter.NewOutWriter().WriteFeatures(features, cfg); err != nil {
			contract.LogFatal("Failed to write features", err)
		}
	},
}

// storeExportCmd exports every datapoint.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all datapoints to a CSV or Parquet file",
	Long: `Write every datapoint joined with its feature name and data type. A .csv output file
gets the import format (FeatureName,Timestamp,Value,Note), with durations as h:mm:ss and
categorical values as index:label. Any other file name is written as Parquet.
Either file can be imported again with 'trackstat import'.

Examples:
  trackstat store export --output-file backup.parquet
  trackstat store export --output-file backup.csv`,
	PreRunE: storeSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteStoreExport(rootCtx, iocache.Manager.GetPointStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export datapoints", err)
		}
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all features and datapoints",
	Long: `Delete every feature and datapoint from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the store tables

Examples:
  trackstat store clear`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStore(cfg.StoreBackend, storeDBFilePath(), cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeMigrateCmd runs database migrations for the point store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations",
	Long: `Apply or roll back schema migrations of the point store.

Migrations allow:
- Upgrading the schema of an existing store
- Preparing a fresh database before the first import
- Rolling back to an earlier schema version

Examples:
  # Migrate to latest version (default)
  trackstat store migrate

  # Migrate to specific version
  trackstat store migrate --target-version 1

  # Rollback to initial state
  trackstat store migrate --target-version 0`,
	PreRunE: storeConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		result, err := iocache.MigrateStore(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		printMigrationResult(result, targetVersion)
	},
}

// printMigrationResult reports what a migration run did.
func printMigrationResult(result iocache.MigrationResult, targetVersion int) {
	switch {
	case targetVersion < 0:
		if !result.Changed {
			fmt.Println("No migration needed. Database is already at the latest version.")
			return
		}
		fmt.Printf("Successfully migrated from version %d to version %d\n", result.From, result.To)
	case targetVersion == 0:
		if !result.Changed {
			fmt.Println("No migration needed. Database is already at version 0")
			return
		}
		fmt.Printf("Successfully rolled back from version %d to version 0\n", result.From)
	default:
		if !result.Changed {
			fmt.Printf("No migration needed. Database is already at version %d\n", targetVersion)
			return
		}
		fmt.Printf("Successfully migrated from version %d to version %d\n", result.From, result.To)
	}
}
