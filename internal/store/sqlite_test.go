package store

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CycleWatch/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func pts(pairs ...any) []model.RawPoint {
	points := make([]model.RawPoint, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		points = append(points, model.RawPoint{
			Date:  model.MustDate(pairs[i].(string)),
			Value: pairs[i+1].(float64),
		})
	}
	return points
}

func TestLatestDateOnEmptyStore(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.LatestDate("btc_price")
	require.NoError(t, err)
	assert.False(t, ok, "new metric should report no data")
}

func TestUpsertAndRange(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert("btc_price", pts(
		"2024-01-03", 42000.0,
		"2024-01-01", 40000.0,
		"2024-01-02", 41000.0,
	)))

	points, err := s.Range("btc_price", model.Date{}, model.Date{})
	require.NoError(t, err)
	require.Len(t, points, 3)
	// Dates come back strictly increasing regardless of insert order.
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i-1].Date.Before(points[i].Date))
	}

	latest, ok, err := s.LatestDate("btc_price")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.MustDate("2024-01-03"), latest)
}

func TestUpsertIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	batch := pts("2024-01-01", 40000.0, "2024-01-02", 41000.0)

	require.NoError(t, s.Upsert("btc_price", batch))
	first, err := s.Range("btc_price", model.Date{}, model.Date{})
	require.NoError(t, err)

	require.NoError(t, s.Upsert("btc_price", batch))
	second, err := s.Range("btc_price", model.Date{}, model.Date{})
	require.NoError(t, err)

	assert.Equal(t, first, second, "re-running an identical upsert must not change the store")
}

func TestUpsertOverwritesExistingDate(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert("btc_price", pts("2024-01-01", 40000.0)))
	require.NoError(t, s.Upsert("btc_price", pts("2024-01-01", 40500.0)))

	points, err := s.Range("btc_price", model.Date{}, model.Date{})
	require.NoError(t, err)
	require.Len(t, points, 1, "overwrite must not duplicate the row")
	assert.Equal(t, 40500.0, points[0].Value, "last write wins")
}

func TestRangeBounds(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert("btc_price", pts(
		"2024-01-01", 1.0,
		"2024-01-02", 2.0,
		"2024-01-03", 3.0,
		"2024-01-04", 4.0,
	)))

	points, err := s.Range("btc_price", model.MustDate("2024-01-02"), model.MustDate("2024-01-03"))
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 2.0, points[0].Value)
	assert.Equal(t, 3.0, points[1].Value)

	// Open bounds.
	points, err = s.Range("btc_price", model.MustDate("2024-01-03"), model.Date{})
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestRangeUnknownMetricIsEmptyNotError(t *testing.T) {
	s := newTestStore(t)
	points, err := s.Range("nope", model.Date{}, model.Date{})
	require.NoError(t, err)
	assert.NotNil(t, points)
	assert.Empty(t, points)
}

func TestMetricsAreIsolated(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert("btc_price", pts("2024-01-01", 40000.0)))
	require.NoError(t, s.Upsert("fear_greed", pts("2024-01-01", 55.0)))

	btc, err := s.Range("btc_price", model.Date{}, model.Date{})
	require.NoError(t, err)
	fng, err := s.Range("fear_greed", model.Date{}, model.Date{})
	require.NoError(t, err)

	require.Len(t, btc, 1)
	require.Len(t, fng, 1)
	assert.Equal(t, 40000.0, btc[0].Value)
	assert.Equal(t, 55.0, fng[0].Value)
}

func TestConcurrentUpsertsToDistinctMetrics(t *testing.T) {
	s := newTestStore(t)
	metrics := []string{"btc_price", "eth_price", "fear_greed", "btc_dominance"}

	var wg sync.WaitGroup
	for _, metric := range metrics {
		wg.Add(1)
		go func(metric string) {
			defer wg.Done()
			for day := 0; day < 20; day++ {
				err := s.Upsert(metric, []model.RawPoint{{
					Date:  model.MustDate("2024-01-01").AddDays(day),
					Value: float64(day),
				}})
				assert.NoError(t, err)
			}
		}(metric)
	}
	wg.Wait()

	for _, metric := range metrics {
		points, err := s.Range(metric, model.Date{}, model.Date{})
		require.NoError(t, err)
		assert.Len(t, points, 20, metric)
		for i := 1; i < len(points); i++ {
			assert.True(t, points[i-1].Date.Before(points[i].Date), metric)
		}
	}
}

func TestUpsertEmptyBatchIsNoop(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert("btc_price", nil))
	_, ok, err := s.LatestDate("btc_price")
	require.NoError(t, err)
	assert.False(t, ok)
}
