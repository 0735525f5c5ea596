package indicator

import (
	"errors"
	"testing"

	"CycleWatch/internal/model"
)

// fakeReader serves canned series from memory.
type fakeReader struct {
	series map[string][]model.RawPoint
	err    error
}

func (f *fakeReader) LatestDate(metric string) (model.Date, bool, error) {
	if f.err != nil {
		return model.Date{}, false, f.err
	}
	points := f.series[metric]
	if len(points) == 0 {
		return model.Date{}, false, nil
	}
	return points[len(points)-1].Date, true, nil
}

func (f *fakeReader) Range(metric string, from, to model.Date) ([]model.RawPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.RawPoint
	for _, p := range f.series[metric] {
		if !from.IsZero() && p.Date.Before(from) {
			continue
		}
		if !to.IsZero() && p.Date.After(to) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func greenYellowRed(bounds ...float64) model.ThresholdRule {
	return model.ThresholdRule{
		Boundaries: bounds,
		Levels:     []model.RiskLevel{model.RiskGreen, model.RiskYellow, model.RiskRed},
	}
}

func TestNewCalculatorRejectsUnknownIndicator(t *testing.T) {
	_, err := NewCalculator(&fakeReader{}, []Rule{
		{Name: "mayer_multiple", Thresholds: greenYellowRed(1, 2)},
	})
	if err == nil {
		t.Fatal("expected error for unregistered indicator")
	}
}

func TestNewCalculatorRejectsMalformedThresholds(t *testing.T) {
	_, err := NewCalculator(&fakeReader{}, []Rule{
		{Name: FearGreed, Thresholds: greenYellowRed(80, 65)},
	})
	if err == nil {
		t.Fatal("expected error for non-monotonic thresholds")
	}
}

func TestComputeSnapshotIndicator(t *testing.T) {
	asOf := model.MustDate("2024-06-01")
	reader := &fakeReader{series: map[string][]model.RawPoint{
		MetricFearGreed: {{Date: asOf.AddDays(-1), Value: 85}},
	}}
	calc, err := NewCalculator(reader, []Rule{
		{Name: FearGreed, Thresholds: greenYellowRed(65, 80)},
	})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	results, err := calc.ComputeAllAsOf(asOf)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Insufficient {
		t.Fatal("expected a value, got insufficient data")
	}
	if res.Value != 85 || res.Level != model.RiskRed {
		t.Errorf("got value %v level %s, want 85 RED", res.Value, res.Level)
	}
}

func TestComputeInsufficientDataIsNotAnError(t *testing.T) {
	reader := &fakeReader{series: map[string][]model.RawPoint{}}
	calc, err := NewCalculator(reader, []Rule{
		{Name: PiCycleTop, Thresholds: greenYellowRed(0.95, 1.0)},
		{Name: WMA200Dev, Thresholds: greenYellowRed(1.0, 2.0)},
		{Name: S2FDev, Thresholds: greenYellowRed(1.7, 2.5)},
	})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	results, err := calc.ComputeAll()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, res := range results {
		if !res.Insufficient {
			t.Errorf("%s: expected insufficient data on empty store", res.Name)
		}
		if res.Level != model.RiskUnknown {
			t.Errorf("%s: level = %s, want UNKNOWN", res.Name, res.Level)
		}
	}
}

func TestComputePropagatesStorageErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	calc, err := NewCalculator(&fakeReader{err: boom}, []Rule{
		{Name: Puell, Thresholds: greenYellowRed(1.8, 3.0)},
	})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	if _, err := calc.Compute(Puell); !errors.Is(err, boom) {
		t.Errorf("expected wrapped storage error, got %v", err)
	}
}

func TestOverall(t *testing.T) {
	mk := func(levels ...model.RiskLevel) []model.IndicatorResult {
		out := make([]model.IndicatorResult, len(levels))
		for i, lvl := range levels {
			out[i] = model.IndicatorResult{Level: lvl, Insufficient: lvl == model.RiskUnknown}
		}
		return out
	}
	th := DefaultOverallThresholds()

	tests := []struct {
		name    string
		results []model.IndicatorResult
		want    model.RiskLevel
	}{
		{"all green", mk(model.RiskGreen, model.RiskGreen, model.RiskGreen), model.RiskGreen},
		{"three red", mk(model.RiskRed, model.RiskRed, model.RiskRed), model.RiskRed},
		{"two red", mk(model.RiskRed, model.RiskRed, model.RiskGreen), model.RiskYellow},
		{"red plus yellows", mk(model.RiskRed, model.RiskYellow, model.RiskYellow, model.RiskYellow), model.RiskYellow},
		{"nothing resolved", mk(model.RiskUnknown, model.RiskUnknown), model.RiskUnknown},
		{"unknowns ignored", mk(model.RiskUnknown, model.RiskGreen), model.RiskGreen},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overall(tc.results, th); got != tc.want {
				t.Errorf("Overall = %s, want %s", got, tc.want)
			}
		})
	}
}
