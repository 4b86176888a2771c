package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/trackstat/core/timehelper"
	"github.com/huangsam/trackstat/schema"
)

// Default values for configuration.
const (
	DefaultPrecision       = 2
	MaxPrecision           = 6
	DefaultSampleCacheSize = 64
	MaxSampleCacheSize     = 10000
	DefaultRedisURL        = "redis://localhost:6379/0"
)

// CacheGranularity aligns the end time used in cache keys, so renders within the
// same minute share a cached result.
const CacheGranularity = time.Minute

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the validated settings for a run.
type Config struct {
	Output     schema.OutputMode
	OutputFile string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	Workers int

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	SampleCacheSize int

	Prefs timehelper.AggregationPreferences

	// EndTime and Duration override the window of rendered graphs when set.
	EndTime  *time.Time
	Duration *time.Duration

	LogLevel string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Precision       int    `mapstructure:"precision"`
	Width           int    `mapstructure:"width"`
	Color           string `mapstructure:"color"`
	Workers         int    `mapstructure:"workers"`
	StoreBackend    string `mapstructure:"store-backend"`
	StoreDBConnect  string `mapstructure:"store-db-connect"`
	CacheBackend    string `mapstructure:"cache-backend"`
	CacheDBConnect  string `mapstructure:"cache-db-connect"`
	SampleCacheSize int    `mapstructure:"sample-cache-size"`
	FirstDayOfWeek  string `mapstructure:"first-day-of-week"`
	StartTimeOfDay  string `mapstructure:"start-time-of-day"`
	End             string `mapstructure:"end"`
	Duration        string `mapstructure:"duration"`
	LogLevel        string `mapstructure:"log-level"`
}

// DefaultRawInput returns the raw input every flag defaults to.
func DefaultRawInput() ConfigRawInput {
	return ConfigRawInput{
		Output:          string(schema.TextOut),
		Precision:       DefaultPrecision,
		Color:           "yes",
		Workers:         DefaultWorkers,
		StoreBackend:    string(schema.SQLiteBackend),
		CacheBackend:    string(schema.NoneBackend),
		SampleCacheSize: DefaultSampleCacheSize,
		FirstDayOfWeek:  "monday",
		LogLevel:        "warn",
	}
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.EndTime != nil {
		end := *c.EndTime
		clone.EndTime = &end
	}
	if c.Duration != nil {
		d := *c.Duration
		clone.Duration = &d
	}
	return &clone
}

// ApplyWindow overrides the window of a graph definition with the configured end time and duration.
func (c *Config) ApplyWindow(graph *schema.LineGraph) {
	if c.EndTime != nil {
		end := *c.EndTime
		graph.EndDate = &end
	}
	if c.Duration != nil {
		d := *c.Duration
		graph.Duration = &d
	}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processPreferences(cfg, input); err != nil {
		return err
	}
	return processTimeRange(cfg, input, time.Now())
}

// ValidateDatabaseConnectionString checks the connection string shape for a backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	case schema.RedisBackend:
		if connStr != "" && !strings.HasPrefix(connStr, "redis://") && !strings.HasPrefix(connStr, "rediss://") {
			return fmt.Errorf("Redis connection string must be a redis:// or rediss:// URL")
		}
	}
	return nil
}

func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 0 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	if input.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", input.Width)
	}

	if input.SampleCacheSize < 0 || input.SampleCacheSize > MaxSampleCacheSize {
		return fmt.Errorf("sample-cache-size must be between 0 and %d (received %d)", MaxSampleCacheSize, input.SampleCacheSize)
	}
	cfg.SampleCacheSize = input.SampleCacheSize

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}
	return nil
}

func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Store Backend Validation ---
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidStoreBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	if err := ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidCacheBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if cfg.CacheBackend == schema.RedisBackend && cfg.CacheDBConnect == "" {
		cfg.CacheDBConnect = DefaultRedisURL
	}
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	// Both default to files in the home directory, so only explicit paths can collide.
	if cfg.StoreBackend == schema.SQLiteBackend && cfg.CacheBackend == schema.SQLiteBackend {
		storePath := cfg.StoreDBConnect
		if storePath == "" {
			storePath = GetStoreDBFilePath()
		}
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetDBFilePath()
		}
		if storePath == cachePath {
			return fmt.Errorf("store and cache must use different SQLite database files. Both resolve to %q", storePath)
		}
	}
	return nil
}

func processPreferences(cfg *Config, input *ConfigRawInput) error {
	prefs := timehelper.DefaultPreferences()
	if input.FirstDayOfWeek != "" {
		day, err := ParseWeekday(input.FirstDayOfWeek)
		if err != nil {
			return fmt.Errorf("invalid first-day-of-week: %w", err)
		}
		prefs.FirstDayOfWeek = day
	}
	offset, err := ParseTimeOfDay(input.StartTimeOfDay)
	if err != nil {
		return fmt.Errorf("invalid start-time-of-day: %w", err)
	}
	prefs.StartTimeOfDay = offset
	cfg.Prefs = prefs
	return nil
}

// processTimeRange handles the end date and duration overrides.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.EndTime = nil
	cfg.Duration = nil

	if input.End != "" {
		t, err := ParseTimestamp(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end date format for '%s'. Expected absolute ISO8601 or 'N [units] ago': %v", input.End, err)
		}
		cfg.EndTime = &t
	}

	if input.Duration != "" {
		d, err := ParseLookbackDuration(input.Duration)
		if err != nil {
			return fmt.Errorf("invalid duration '%s'. Expected Go duration or 'N [units]': %v", input.Duration, err)
		}
		cfg.Duration = &d
	}
	return nil
}
