package schema

import "time"

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for storage and caching.
	DatabaseBackend string

	// AveragingMode represents the moving average applied to a graph feature.
	AveragingMode string

	// PlottingMode represents how points of a graph feature are bucketed before plotting.
	PlottingMode string

	// PointStyle represents how individual points are drawn.
	PointStyle string

	// DurationPlottingMode represents the unit used when plotting duration values.
	DurationPlottingMode string

	// YRangeType represents whether the y axis is computed from the data or pinned.
	YRangeType string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // result cache only
	NoneBackend       DatabaseBackend = "none"
)

// All averaging modes supported.
const (
	NoAveraging             AveragingMode = "none" // default
	DailyMovingAverage      AveragingMode = "daily"
	ThreeDayMovingAverage   AveragingMode = "three_day"
	WeeklyMovingAverage     AveragingMode = "weekly"
	MonthlyMovingAverage    AveragingMode = "monthly"
	ThreeMonthMovingAverage AveragingMode = "three_month"
	SixMonthMovingAverage   AveragingMode = "six_month"
	YearlyMovingAverage     AveragingMode = "yearly"
)

// All plotting modes supported.
const (
	WhenTracked           PlottingMode = "when_tracked" // default
	GenerateHourlyTotals  PlottingMode = "hourly"
	GenerateDailyTotals   PlottingMode = "daily"
	GenerateWeeklyTotals  PlottingMode = "weekly"
	GenerateMonthlyTotals PlottingMode = "monthly"
	GenerateYearlyTotals  PlottingMode = "yearly"
)

// All point styles supported.
const (
	PointStyleNone              PointStyle = "none"
	PointStyleCircles           PointStyle = "circles" // default
	PointStyleCirclesAndNumbers PointStyle = "circles_and_numbers"
)

// All duration plotting modes supported.
const (
	DurationPlotNone       DurationPlottingMode = "none" // default
	DurationPlotIfPossible DurationPlottingMode = "duration"
	DurationPlotHours      DurationPlottingMode = "hours"
	DurationPlotMinutes    DurationPlottingMode = "minutes"
)

// All y range types supported.
const (
	DynamicYRange YRangeType = "dynamic" // default
	FixedYRange   YRangeType = "fixed"
)

const day = 24 * time.Hour

// MovingAverageWindows maps each averaging mode to its causal window.
var MovingAverageWindows = map[AveragingMode]time.Duration{
	DailyMovingAverage:      day,
	ThreeDayMovingAverage:   3 * day,
	WeeklyMovingAverage:     7 * day,
	MonthlyMovingAverage:    30 * day,
	ThreeMonthMovingAverage: 90 * day,
	SixMonthMovingAverage:   180 * day,
	YearlyMovingAverage:     365 * day,
}

// DurationDivisors maps each duration plotting mode to the divisor applied to seconds.
var DurationDivisors = map[DurationPlottingMode]float64{
	DurationPlotHours:   3600,
	DurationPlotMinutes: 60,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidStoreBackends lists all valid point store backends.
var ValidStoreBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidCacheBackends lists all valid result cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidAveragingModes lists all valid averaging modes.
var ValidAveragingModes = map[AveragingMode]struct{}{
	NoAveraging:             {},
	DailyMovingAverage:      {},
	ThreeDayMovingAverage:   {},
	WeeklyMovingAverage:     {},
	MonthlyMovingAverage:    {},
	ThreeMonthMovingAverage: {},
	SixMonthMovingAverage:   {},
	YearlyMovingAverage:     {},
}

// ValidPlottingModes lists all valid plotting modes.
var ValidPlottingModes = map[PlottingMode]struct{}{
	WhenTracked:           {},
	GenerateHourlyTotals:  {},
	GenerateDailyTotals:   {},
	GenerateWeeklyTotals:  {},
	GenerateMonthlyTotals: {},
	GenerateYearlyTotals:  {},
}

// ValidPointStyles lists all valid point styles.
var ValidPointStyles = map[PointStyle]struct{}{
	PointStyleNone:              {},
	PointStyleCircles:           {},
	PointStyleCirclesAndNumbers: {},
}

// ValidDurationPlottingModes lists all valid duration plotting modes.
var ValidDurationPlottingModes = map[DurationPlottingMode]struct{}{
	DurationPlotNone:       {},
	DurationPlotIfPossible: {},
	DurationPlotHours:      {},
	DurationPlotMinutes:    {},
}

// ValidYRangeTypes lists all valid y range types.
var ValidYRangeTypes = map[YRangeType]struct{}{
	DynamicYRange: {},
	FixedYRange:   {},
}
