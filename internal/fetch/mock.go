package fetch

import (
	"context"

	"CycleWatch/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// When Points is nil it generates a deterministic drifting series ending
// today.
type MockFetcher struct {
	Base   float64
	Points []model.RawPoint
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, req Request) ([]model.RawPoint, error) {
	if m.Err != nil {
		return nil, &FetchError{Source: m.Name(), Metric: req.Metric, Err: m.Err}
	}
	if m.Points != nil {
		out := make([]model.RawPoint, len(m.Points))
		copy(out, m.Points)
		return normalize(out, req.Since), nil
	}
	days := req.InitialDays
	if days <= 0 {
		days = 400
	}
	base := m.Base
	if base == 0 {
		base = 100
	}
	points := GenerateSeries(model.Today().AddDays(-(days - 1)), days, base)
	return normalize(points, req.Since), nil
}

// GenerateSeries builds a synthetic daily series with a mild linear drift,
// starting at `start` for `count` days.
func GenerateSeries(start model.Date, count int, base float64) []model.RawPoint {
	points := make([]model.RawPoint, count)
	for i := 0; i < count; i++ {
		points[i] = model.RawPoint{
			Date:  start.AddDays(i),
			Value: base * (1 + float64(i-count/2)*0.001),
		}
	}
	return points
}
