package iocache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/trackstat/internal/contract"
	"github.com/huangsam/trackstat/schema"
)

// Table names for the point store.
const (
	featuresTable = "trackstat_features"
	pointsTable   = "trackstat_data_points"
	revisionTable = "trackstat_revision"
)

// PointStoreImpl stores features and their datapoints in a SQL database.
// Timestamps are kept as Unix milliseconds so range queries behave the same on every backend,
// next to the UTC offset they were recorded in.
type PointStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.PointStore = &PointStoreImpl{} // Compile-time check

// NewPointStore opens the point store for the backend and makes sure its tables exist.
func NewPointStore(backend schema.DatabaseBackend, connStr string) (*PointStoreImpl, error) {
	db, err := openDatabase(backend, connStr, GetStoreDBFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize point store: %w", err)
	}

	if err := createPointTables(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	contract.LogDebug("point store ready on %s", backend)
	return &PointStoreImpl{db: db, backend: backend}, nil
}

// createPointTables creates the store tables and seeds the revision row.
func createPointTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{featuresTable, getCreateFeaturesQuery(backend)},
		{pointsTable, getCreatePointsQuery(backend)},
		{revisionTable, getCreateRevisionQuery(backend)},
	}
	for _, t := range tables {
		if _, err := db.Exec(t.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.name, err)
		}
	}
	if _, err := db.Exec(getSeedRevisionQuery(backend)); err != nil {
		return fmt.Errorf("failed to seed %s: %w", revisionTable, err)
	}
	return nil
}

func getCreateFeaturesQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(featuresTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				feature_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				name VARCHAR(255) NOT NULL UNIQUE,
				data_type INT NOT NULL
			);
		`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				feature_id BIGSERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				data_type INTEGER NOT NULL
			);
		`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				feature_id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				data_type INTEGER NOT NULL
			);
		`, quoted)
	}
}

func getCreatePointsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(pointsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				feature_id BIGINT NOT NULL,
				ts_millis BIGINT NOT NULL,
				utc_offset_sec INT NOT NULL DEFAULT 0,
				value DOUBLE NOT NULL,
				label TEXT NOT NULL,
				note TEXT NOT NULL,
				PRIMARY KEY (feature_id, ts_millis)
			);
		`, quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				feature_id BIGINT NOT NULL,
				ts_millis BIGINT NOT NULL,
				utc_offset_sec INTEGER NOT NULL DEFAULT 0,
				value DOUBLE PRECISION NOT NULL,
				label TEXT NOT NULL,
				note TEXT NOT NULL,
				PRIMARY KEY (feature_id, ts_millis)
			);
		`, quoted)
	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				feature_id INTEGER NOT NULL,
				ts_millis INTEGER NOT NULL,
				utc_offset_sec INTEGER NOT NULL DEFAULT 0,
				value REAL NOT NULL,
				label TEXT NOT NULL,
				note TEXT NOT NULL,
				PRIMARY KEY (feature_id, ts_millis)
			);
		`, quoted)
	}
}

func getCreateRevisionQuery(backend schema.DatabaseBackend) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			revision BIGINT NOT NULL
		);
	`, quoteTableName(revisionTable, backend))
}

func getSeedRevisionQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(revisionTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("INSERT IGNORE INTO %s (id, revision) VALUES (1, 0)", quoted)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("INSERT INTO %s (id, revision) VALUES (1, 0) ON CONFLICT (id) DO NOTHING", quoted)
	default: // SQLite
		return fmt.Sprintf("INSERT OR IGNORE INTO %s (id, revision) VALUES (1, 0)", quoted)
	}
}

// q quotes the table placeholders {features}, {points} and {revision} and rebinds parameters.
func (ps *PointStoreImpl) q(query string) string {
	r := strings.NewReplacer(
		"{features}", quoteTableName(featuresTable, ps.backend),
		"{points}", quoteTableName(pointsTable, ps.backend),
		"{revision}", quoteTableName(revisionTable, ps.backend),
	)
	return rebind(ps.backend, r.Replace(query))
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// bumpRevision marks the data as changed.
func (ps *PointStoreImpl) bumpRevision(ctx context.Context, ex execer) error {
	if _, err := ex.ExecContext(ctx, ps.q("UPDATE {revision} SET revision = revision + 1 WHERE id = 1")); err != nil {
		return fmt.Errorf("failed to bump revision: %w", err)
	}
	return nil
}

// withTx runs fn in a transaction, committing only when it succeeds.
func (ps *PointStoreImpl) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Revision returns a counter that grows on every write.
func (ps *PointStoreImpl) Revision(ctx context.Context) (int64, error) {
	var revision int64
	if err := ps.db.QueryRowContext(ctx, ps.q("SELECT revision FROM {revision} WHERE id = 1")).Scan(&revision); err != nil {
		return 0, fmt.Errorf("failed to read revision: %w", err)
	}
	return revision, nil
}

// FindFeature looks a feature up by name.
func (ps *PointStoreImpl) FindFeature(ctx context.Context, name string) (schema.Feature, error) {
	f := schema.Feature{Name: name}
	row := ps.db.QueryRowContext(ctx, ps.q("SELECT feature_id, data_type FROM {features} WHERE name = ?"), name)
	if err := row.Scan(&f.ID, &f.DataType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return f, fmt.Errorf("%w: %s", contract.ErrFeatureNotFound, name)
		}
		return f, fmt.Errorf("failed to find feature %s: %w", name, err)
	}
	return f, nil
}

// UpsertFeature returns the named feature, creating it with the data type when missing.
func (ps *PointStoreImpl) UpsertFeature(ctx context.Context, name string, dataType schema.DataType) (schema.Feature, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return schema.Feature{}, false, errors.New("feature name cannot be empty")
	}
	existing, err := ps.FindFeature(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, contract.ErrFeatureNotFound) {
		return schema.Feature{}, false, err
	}

	f := schema.Feature{Name: name, DataType: dataType}
	err = ps.withTx(ctx, func(tx *sql.Tx) error {
		if ps.backend == schema.PostgreSQLBackend {
			row := tx.QueryRowContext(ctx, ps.q("INSERT INTO {features} (name, data_type) VALUES (?, ?) RETURNING feature_id"), name, int(dataType))
			if err := row.Scan(&f.ID); err != nil {
				return fmt.Errorf("failed to insert feature %s: %w", name, err)
			}
		} else {
			res, err := tx.ExecContext(ctx, ps.q("INSERT INTO {features} (name, data_type) VALUES (?, ?)"), name, int(dataType))
			if err != nil {
				return fmt.Errorf("failed to insert feature %s: %w", name, err)
			}
			if f.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("failed to read feature id: %w", err)
			}
		}
		return ps.bumpRevision(ctx, tx)
	})
	if err != nil {
		return schema.Feature{}, false, err
	}
	contract.LogInfo("created feature %s (%d) as %s", name, f.ID, dataType)
	return f, true, nil
}

// ListFeatures returns all features ordered by id.
func (ps *PointStoreImpl) ListFeatures(ctx context.Context) ([]schema.Feature, error) {
	rows, err := ps.db.QueryContext(ctx, ps.q("SELECT feature_id, name, data_type FROM {features} ORDER BY feature_id"))
	if err != nil {
		return nil, fmt.Errorf("failed to query features: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var features []schema.Feature
	for rows.Next() {
		var f schema.Feature
		if err := rows.Scan(&f.ID, &f.Name, &f.DataType); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating features: %w", err)
	}
	return features, nil
}

// DeleteFeature removes a feature and its points.
func (ps *PointStoreImpl) DeleteFeature(ctx context.Context, featureID int64) error {
	return ps.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, ps.q("DELETE FROM {points} WHERE feature_id = ?"), featureID); err != nil {
			return fmt.Errorf("failed to delete points of feature %d: %w", featureID, err)
		}
		res, err := tx.ExecContext(ctx, ps.q("DELETE FROM {features} WHERE feature_id = ?"), featureID)
		if err != nil {
			return fmt.Errorf("failed to delete feature %d: %w", featureID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: id %d", contract.ErrFeatureNotFound, featureID)
		}
		return ps.bumpRevision(ctx, tx)
	})
}

// getUpsertPointQuery returns the backend specific insert that replaces points on the same instant.
func (ps *PointStoreImpl) getUpsertPointQuery() string {
	switch ps.backend {
	case schema.MySQLBackend:
		return ps.q(`INSERT INTO {points} (feature_id, ts_millis, utc_offset_sec, value, label, note) VALUES (?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE utc_offset_sec = new.utc_offset_sec, value = new.value, label = new.label, note = new.note`)
	case schema.PostgreSQLBackend:
		return ps.q(`INSERT INTO {points} (feature_id, ts_millis, utc_offset_sec, value, label, note) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (feature_id, ts_millis) DO UPDATE SET utc_offset_sec = EXCLUDED.utc_offset_sec,
			value = EXCLUDED.value, label = EXCLUDED.label, note = EXCLUDED.note`)
	default: // SQLite
		return ps.q(`INSERT OR REPLACE INTO {points} (feature_id, ts_millis, utc_offset_sec, value, label, note) VALUES (?, ?, ?, ?, ?, ?)`)
	}
}

// InsertPoints writes points in one transaction, replacing any with the same feature and timestamp.
func (ps *PointStoreImpl) InsertPoints(ctx context.Context, points []schema.DataPoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}
	err := ps.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, ps.getUpsertPointQuery())
		if err != nil {
			return fmt.Errorf("failed to prepare point insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, p := range points {
			if _, err := stmt.ExecContext(ctx, p.FeatureID, p.Timestamp.UnixMilli(), schema.UTCOffset(p.Timestamp), p.Value, p.Label, p.Note); err != nil {
				return fmt.Errorf("failed to insert point for feature %d at %s: %w", p.FeatureID, p.Timestamp.Format(time.RFC3339), err)
			}
		}
		return ps.bumpRevision(ctx, tx)
	})
	if err != nil {
		return 0, err
	}
	return len(points), nil
}

// GetPoints returns the points of a feature matching the query.
func (ps *PointStoreImpl) GetPoints(ctx context.Context, featureID int64, pq contract.PointQuery) ([]schema.DataPoint, error) {
	var b strings.Builder
	b.WriteString("SELECT ts_millis, utc_offset_sec, value, label, note FROM {points} WHERE feature_id = ?")
	args := []any{featureID}
	if !pq.From.IsZero() {
		b.WriteString(" AND ts_millis >= ?")
		args = append(args, pq.From.UnixMilli())
	}
	if !pq.To.IsZero() {
		b.WriteString(" AND ts_millis <= ?")
		args = append(args, pq.To.UnixMilli())
	}
	if pq.Order == contract.NewestFirst {
		b.WriteString(" ORDER BY ts_millis DESC")
	} else {
		b.WriteString(" ORDER BY ts_millis ASC")
	}
	if pq.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, pq.Limit)
	}

	rows, err := ps.db.QueryContext(ctx, ps.q(b.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points of feature %d: %w", featureID, err)
	}
	defer func() { _ = rows.Close() }()

	var points []schema.DataPoint
	for rows.Next() {
		var ms int64
		var offset int
		p := schema.DataPoint{FeatureID: featureID}
		if err := rows.Scan(&ms, &offset, &p.Value, &p.Label, &p.Note); err != nil {
			return nil, fmt.Errorf("failed to scan point: %w", err)
		}
		p.Timestamp = schema.ZonedTime(ms, offset)
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating points: %w", err)
	}
	return points, nil
}

// firstPoint returns the only point of a single-row query, or nil.
func (ps *PointStoreImpl) firstPoint(ctx context.Context, featureID int64, pq contract.PointQuery) (*schema.DataPoint, error) {
	pq.Limit = 1
	points, err := ps.GetPoints(ctx, featureID, pq)
	if err != nil || len(points) == 0 {
		return nil, err
	}
	return &points[0], nil
}

// GetPointAtOrBefore returns the latest point at or before ts, or nil when there is none.
func (ps *PointStoreImpl) GetPointAtOrBefore(ctx context.Context, featureID int64, ts time.Time) (*schema.DataPoint, error) {
	return ps.firstPoint(ctx, featureID, contract.PointQuery{To: ts, Order: contract.NewestFirst})
}

// GetPointAtOrAfter returns the earliest point at or after ts, or nil when there is none.
func (ps *PointStoreImpl) GetPointAtOrAfter(ctx context.Context, featureID int64, ts time.Time) (*schema.DataPoint, error) {
	return ps.firstPoint(ctx, featureID, contract.PointQuery{From: ts, Order: contract.OldestFirst})
}

// GetFeatureType returns the declared data type of a feature.
func (ps *PointStoreImpl) GetFeatureType(ctx context.Context, featureID int64) (schema.DataType, error) {
	var dt schema.DataType
	row := ps.db.QueryRowContext(ctx, ps.q("SELECT data_type FROM {features} WHERE feature_id = ?"), featureID)
	if err := row.Scan(&dt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dt, fmt.Errorf("%w: id %d", contract.ErrFeatureNotFound, featureID)
		}
		return dt, fmt.Errorf("failed to read type of feature %d: %w", featureID, err)
	}
	return dt, nil
}

// ExportPoints returns every point joined with its feature, ordered by feature and time.
func (ps *PointStoreImpl) ExportPoints(ctx context.Context) ([]schema.DataPointRecord, error) {
	rows, err := ps.db.QueryContext(ctx, ps.q(`
		SELECT p.feature_id, f.name, f.data_type, p.ts_millis, p.utc_offset_sec, p.value, p.label, p.note
		FROM {points} p JOIN {features} f ON f.feature_id = p.feature_id
		ORDER BY p.feature_id, p.ts_millis`))
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.DataPointRecord
	for rows.Next() {
		var r schema.DataPointRecord
		var dt schema.DataType
		var ms int64
		var offset int
		if err := rows.Scan(&r.FeatureID, &r.FeatureName, &dt, &ms, &offset, &r.Value, &r.Label, &r.Note); err != nil {
			return nil, fmt.Errorf("failed to scan point record: %w", err)
		}
		r.DataType = dt.String()
		r.Timestamp = schema.ZonedTime(ms, offset)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating point records: %w", err)
	}
	return records, nil
}

// SummarizeFeatures returns every feature with its point count and time extent.
func (ps *PointStoreImpl) SummarizeFeatures(ctx context.Context) ([]schema.FeatureSummary, error) {
	rows, err := ps.db.QueryContext(ctx, ps.q(`
		SELECT f.feature_id, f.name, f.data_type, COUNT(p.ts_millis), MIN(p.ts_millis), MAX(p.ts_millis)
		FROM {features} f LEFT JOIN {points} p ON p.feature_id = f.feature_id
		GROUP BY f.feature_id, f.name, f.data_type
		ORDER BY f.feature_id`))
	if err != nil {
		return nil, fmt.Errorf("failed to summarize features: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summaries []schema.FeatureSummary
	for rows.Next() {
		var s schema.FeatureSummary
		var first, last sql.NullInt64
		if err := rows.Scan(&s.ID, &s.Name, &s.DataType, &s.Points, &first, &last); err != nil {
			return nil, fmt.Errorf("failed to scan feature summary: %w", err)
		}
		if first.Valid {
			s.First = time.UnixMilli(first.Int64).UTC()
		}
		if last.Valid {
			s.Last = time.UnixMilli(last.Int64).UTC()
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feature summaries: %w", err)
	}
	return summaries, nil
}

// GetStatus returns status information about the point store.
func (ps *PointStoreImpl) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(ps.backend),
		Connected:  ps.db != nil,
		TableSizes: make(map[string]int64),
	}

	for _, table := range []string{featuresTable, pointsTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, ps.backend))
		if err := ps.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalFeatures = int(status.TableSizes[featuresTable])
	status.TotalPoints = int(status.TableSizes[pointsTable])

	revision, err := ps.Revision(ctx)
	if err != nil {
		return status, err
	}
	status.Revision = revision

	if status.TotalPoints > 0 {
		var oldest, last int64
		if err := ps.db.QueryRowContext(ctx, ps.q("SELECT MIN(ts_millis), MAX(ts_millis) FROM {points}")).Scan(&oldest, &last); err != nil {
			return status, fmt.Errorf("failed to get point time range: %w", err)
		}
		status.OldestPointTime = time.UnixMilli(oldest).UTC()
		status.LastPointTime = time.UnixMilli(last).UTC()
	}
	return status, nil
}

// Clear removes all features and points. The revision keeps growing so cached results go stale.
func (ps *PointStoreImpl) Clear(ctx context.Context) error {
	return ps.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{pointsTable, featuresTable} {
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", quoteTableName(table, ps.backend))); err != nil {
				return fmt.Errorf("failed to clear table %s: %w", table, err)
			}
		}
		return ps.bumpRevision(ctx, tx)
	})
}

// Close closes the underlying connection.
func (ps *PointStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
