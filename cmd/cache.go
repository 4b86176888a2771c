package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/internal/iocache"
	"github.com/huangsam/trackstat/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheConfig loads the result cache settings without opening the cache.
func cacheConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if _, ok := schema.ValidCacheBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheSetup loads minimal configuration and opens the result cache alone.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := cacheConfig(); err != nil {
		return err
	}

	// The point store stays in memory for cache commands
	if err := iocache.InitCaching(schema.NoneBackend, "", cfg.CacheBackend, cfg.CacheDBConnect, 0); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheConfigWrapper wraps cacheConfig for commands that must not open the cache.
func cacheConfigWrapper(_ *cobra.Command, _ []string) error {
	return cacheConfig()
}

// cacheDBFilePath returns the SQLite file of the result cache.
func cacheDBFilePath() string {
	if cfg.CacheDBConnect != "" {
		return cfg.CacheDBConnect
	}
	return contract.GetDBFilePath()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization instead of the full sharedSetup
// used by graph commands. This avoids opening the point store for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the rendered graph cache (improves performance)",
	Long: `Manage the cache of rendered graphs that speeds up repeated renders.

Trackstat keys each rendered graph by its definition, its window and the point store
revision, so any write to the store makes older entries unreachable.

Supported backends: SQLite, MySQL, PostgreSQL, Redis, or None (default)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  trackstat cache status --cache-backend sqlite

  # Clear a Redis cache
  trackstat cache clear --cache-backend redis --cache-db-connect redis://localhost:6379/0`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached graph results",
	Long: `Delete all cached graph results from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes every key of the cache

Examples:
  # Clear SQLite cache
  trackstat cache clear --cache-backend sqlite

  # Clear MySQL cache (set connection string via env variable)
  TRACKSTAT_CACHE_BACKEND=mysql TRACKSTAT_CACHE_DB_CONNECT="..." trackstat cache clear`,
	PreRunE: cacheConfigWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the graph result cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache size

Examples:
  # Check cache status
  trackstat cache status --cache-backend sqlite`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetResultStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
