package iocache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// resultTable is the name of the table for rendered graph results.
const resultTable = "trackstat_result_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for the result cache.
func GetDBFilePath() string {
	return contract.GetDBFilePath()
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the point store.
func GetStoreDBFilePath() string {
	return contract.GetStoreDBFilePath()
}

// OpenPointStore opens the point store for a backend. The none backend keeps points in memory.
func OpenPointStore(backend schema.DatabaseBackend, connStr string) (contract.PointStore, error) {
	if backend == schema.NoneBackend || backend == "" {
		return NewMemoryStore(), nil
	}
	return NewPointStore(backend, connStr)
}

// InitCaching initializes the global manager with the point store and the result cache.
// A positive sampleCacheSize puts an in-memory LRU in front of the point store.
func InitCaching(storeBackend schema.DatabaseBackend, storeConnStr string, cacheBackend schema.DatabaseBackend, cacheConnStr string, sampleCacheSize int) error {
	var initErr error

	initOnce.Do(func() {
		points, err := OpenPointStore(storeBackend, storeConnStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize point store: %w", err)
			return
		}
		if sampleCacheSize > 0 {
			cached, err := NewSampleCache(points, sampleCacheSize)
			if err != nil {
				_ = points.Close()
				initErr = err
				return
			}
			points = cached
		}

		if cacheBackend == "" {
			cacheBackend = schema.NoneBackend
		}
		results, err := NewCacheStore(resultTable, cacheBackend, cacheConnStr)
		if err != nil {
			_ = points.Close()
			initErr = fmt.Errorf("failed to initialize result caching: %w", err)
			return
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.points = points
		Manager.results = results
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.results != nil {
			_ = Manager.results.Close()
		}
		if Manager.points != nil {
			_ = Manager.points.Close()
		}
	})
}

// ClearCache clears the result cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For Redis, it deletes every key of the cache.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, resultTable)

	case schema.RedisBackend:
		store, err := NewRedisCacheStore(resultTable, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.Clear()

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearStore removes every stored feature and point for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the store tables.
func ClearStore(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, pointsTable, featuresTable, revisionTable, migrationsTable)

	case schema.NoneBackend:
		return nil

	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

// removeSQLiteFile deletes a SQLite database file, ignoring one that does not exist.
func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := openDatabase(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return dropTables(context.Background(), db, backend, tables...)
}

func dropTables(ctx context.Context, db *sql.DB, backend schema.DatabaseBackend, tables ...string) error {
	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
