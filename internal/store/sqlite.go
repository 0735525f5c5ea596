package store

import (
	"database/sql"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"CycleWatch/internal/model"
)

// metricStripes bounds the number of per-metric write locks. Upserts to
// distinct metrics proceed concurrently (modulo hash collisions); upserts
// to the same metric are serialized.
const metricStripes = 32

// SQLiteStore persists metric series to a local SQLite database, one row
// per (metric, date).
type SQLiteStore struct {
	db      *sql.DB
	stripes [metricStripes]sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads don't block updater writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] series store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS metric_points (
			metric     TEXT    NOT NULL,
			date       TEXT    NOT NULL,
			value      REAL    NOT NULL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (metric, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metric_date ON metric_points(metric, date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) lock(metric string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(metric))
	return &s.stripes[h.Sum32()%metricStripes]
}

// Upsert writes a batch of points for one metric inside a transaction.
// Existing (metric, date) rows are overwritten (last write wins), so the
// operation is idempotent.
func (s *SQLiteStore) Upsert(metric string, points []model.RawPoint) error {
	if len(points) == 0 {
		return nil
	}
	mu := s.lock(metric)
	mu.Lock()
	defer mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return &StorageError{Op: "begin upsert", Metric: metric, Err: err}
	}

	stmt, err := tx.Prepare(`INSERT INTO metric_points (metric, date, value, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(metric, date) DO UPDATE SET
			value = excluded.value,
			fetched_at = excluded.fetched_at`)
	if err != nil {
		tx.Rollback()
		return &StorageError{Op: "prepare upsert", Metric: metric, Err: err}
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, p := range points {
		if _, err := stmt.Exec(metric, p.Date.String(), p.Value, now); err != nil {
			tx.Rollback()
			return &StorageError{Op: "upsert", Metric: metric, Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &StorageError{Op: "commit upsert", Metric: metric, Err: err}
	}
	return nil
}

// LatestDate returns the most recent stored date for a metric.
func (s *SQLiteStore) LatestDate(metric string) (model.Date, bool, error) {
	var raw sql.NullString
	err := s.db.QueryRow(`SELECT MAX(date) FROM metric_points WHERE metric = ?`, metric).Scan(&raw)
	if err != nil {
		return model.Date{}, false, &StorageError{Op: "latest date", Metric: metric, Err: err}
	}
	if !raw.Valid {
		return model.Date{}, false, nil
	}
	d, err := model.ParseDate(raw.String)
	if err != nil {
		return model.Date{}, false, &StorageError{Op: "latest date", Metric: metric, Err: err}
	}
	return d, true, nil
}

// Range returns the ordered points in [from, to]. Dates are stored in ISO
// form, so string comparison preserves chronological order.
func (s *SQLiteStore) Range(metric string, from, to model.Date) ([]model.RawPoint, error) {
	query := `SELECT date, value FROM metric_points WHERE metric = ?`
	args := []any{metric}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, from.String())
	}
	if !to.IsZero() {
		query += ` AND date <= ?`
		args = append(args, to.String())
	}
	query += ` ORDER BY date`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, &StorageError{Op: "range", Metric: metric, Err: err}
	}
	defer rows.Close()

	points := []model.RawPoint{}
	for rows.Next() {
		var rawDate string
		var value float64
		if err := rows.Scan(&rawDate, &value); err != nil {
			return nil, &StorageError{Op: "range scan", Metric: metric, Err: err}
		}
		d, err := model.ParseDate(rawDate)
		if err != nil {
			return nil, &StorageError{Op: "range scan", Metric: metric, Err: err}
		}
		points = append(points, model.RawPoint{Date: d, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "range", Metric: metric, Err: err}
	}
	return points, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing series store")
	return s.db.Close()
}
