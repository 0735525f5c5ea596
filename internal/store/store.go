package store

import (
	"fmt"

	"CycleWatch/internal/model"
)

// StorageError marks an unrecoverable local I/O failure. It aborts the
// affected metric's write but never the whole run.
type StorageError struct {
	Op     string
	Metric string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Metric != "" {
		return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Metric, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Reader is the read-only view of the series store used by the indicator
// calculator and the dashboard.
type Reader interface {
	// LatestDate returns the most recent stored date for a metric;
	// ok is false when the metric has no data yet.
	LatestDate(metric string) (d model.Date, ok bool, err error)
	// Range returns the ordered points with date in [from, to]. A zero
	// from or to leaves that side unbounded. An unknown metric or an
	// empty window yields an empty slice, not an error.
	Range(metric string, from, to model.Date) ([]model.RawPoint, error)
}

// Store is the full series store contract. Only the incremental updater
// mutates it.
type Store interface {
	Reader
	// Upsert inserts or overwrites points for a metric. The batch is
	// transactional per metric: on failure nothing from the batch is
	// visible and other metrics are unaffected. Re-running with
	// identical input leaves the store unchanged.
	Upsert(metric string, points []model.RawPoint) error
	Close() error
}
