package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CycleWatch/internal/fetch"
	"CycleWatch/internal/indicator"
	"CycleWatch/internal/model"
	"CycleWatch/internal/store"
	"CycleWatch/internal/updater"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	calc, err := indicator.NewCalculator(st, []indicator.Rule{
		{Name: indicator.FearGreed, Thresholds: model.ThresholdRule{
			Boundaries: []float64{65, 80},
			Levels:     []model.RiskLevel{model.RiskGreen, model.RiskYellow, model.RiskRed},
		}},
	})
	require.NoError(t, err)

	upd := updater.New(st, map[string]fetch.Fetcher{
		"mock": &fetch.MockFetcher{Base: 100},
	}, []updater.Target{
		{Metric: "btc_price", Source: "mock", InitialDays: 10},
	}, 1)

	return New(":0", st, calc, upd, indicator.DefaultOverallThresholds()), st
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestIndicatorsEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	require.NoError(t, st.Upsert(indicator.MetricFearGreed, []model.RawPoint{
		{Date: model.Today(), Value: 90},
	}))

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/indicators", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload indicatorsPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Indicators, 1)
	assert.Equal(t, indicator.FearGreed, payload.Indicators[0].Name)
	assert.Equal(t, model.RiskRed, payload.Indicators[0].Level)
}

func TestSeriesEndpoint(t *testing.T) {
	srv, st := newTestServer(t)
	require.NoError(t, st.Upsert("btc_price", []model.RawPoint{
		{Date: model.MustDate("2024-01-01"), Value: 40000},
		{Date: model.MustDate("2024-01-02"), Value: 41000},
	}))

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/series/btc_price?from=2024-01-02", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Metric string           `json:"metric"`
		Points []model.RawPoint `json:"points"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "btc_price", resp.Metric)
	require.Len(t, resp.Points, 1)
	assert.Equal(t, 41000.0, resp.Points[0].Value)

	rec = httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/series/btc_price?from=not-a-date", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest("POST", "/api/refresh", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// GET is not an accepted method for the trigger.
	rec = httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest("GET", "/api/refresh", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIndexRendersRiskTable(t *testing.T) {
	srv, st := newTestServer(t)
	require.NoError(t, st.Upsert(indicator.MetricFearGreed, []model.RawPoint{
		{Date: model.Today(), Value: 20},
	}))

	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "fear_greed"))
	assert.True(t, strings.Contains(body, "GREEN"))
}
