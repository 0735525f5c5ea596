package fetch

import (
	"context"
	"fmt"
	"sort"

	"CycleWatch/internal/model"
)

// FetchError marks a transient upstream failure (network, provider,
// decode). The updater treats it as "skip this metric this cycle".
type FetchError struct {
	Source string
	Metric string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Metric, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Request identifies what to pull from an upstream source.
type Request struct {
	// Metric is the storage name the points will be filed under.
	Metric string
	// ID is the source-specific identifier (coin id, ticker symbol, ...).
	ID string
	// Since bounds the fetch to dates on or after it; zero means the
	// source's full available history.
	Since model.Date
	// InitialDays caps the backfill depth when Since is zero.
	InitialDays int
}

// Fetcher produces a normalized, date-ascending (date, value) sequence for
// a metric. Implementations are expected to be idempotent for identical
// requests.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]model.RawPoint, error)
	Name() string
}

// normalize sorts points ascending, keeps the last value per date, and
// drops points before since. Every adapter funnels its output through
// here so downstream code can rely on unique, ordered dates.
func normalize(points []model.RawPoint, since model.Date) []model.RawPoint {
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })
	out := points[:0]
	for _, p := range points {
		if !since.IsZero() && p.Date.Before(since) {
			continue
		}
		if n := len(out); n > 0 && out[n-1].Date == p.Date {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
