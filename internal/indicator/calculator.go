package indicator

import (
	"fmt"
	"sort"
	"time"

	"CycleWatch/internal/model"
	"CycleWatch/internal/store"
)

// Metric names the calculators read from the store.
const (
	MetricBTCPrice  = "btc_price"
	MetricBTCSupply = "btc_supply"
	MetricFearGreed = "fear_greed"
	MetricDominance = "btc_dominance"
)

// Indicator names.
const (
	PiCycleTop      = "pi_cycle_top"
	WMA200Dev       = "wma200_deviation"
	S2FDev          = "s2f_deviation"
	Puell           = "puell_multiple"
	FearGreed       = "fear_greed"
	Dominance       = "btc_dominance"
)

// Lookback windows for store reads, sized with the same buffers the
// indicators' own windows need (plus slack for gap days).
const (
	piLookbackDays    = 420
	wmaLookbackDays   = 1500
	puellLookbackDays = 420
	snapLookbackDays  = 30
)

// Calc computes an indicator's raw value from stored history as of a
// date. ok=false means insufficient data, which is a valid result, not an
// error; errors are reserved for storage failures.
type Calc func(r store.Reader, asOf model.Date) (value float64, ok bool, err error)

// registry maps indicator names to their calculation, replacing any
// per-metric dynamic dispatch.
var registry = map[string]Calc{
	PiCycleTop: func(r store.Reader, asOf model.Date) (float64, bool, error) {
		daily, err := r.Range(MetricBTCPrice, asOf.AddDays(-piLookbackDays), asOf)
		if err != nil {
			return 0, false, err
		}
		v, ok := PiCycleRatio(daily)
		return v, ok, nil
	},
	WMA200Dev: func(r store.Reader, asOf model.Date) (float64, bool, error) {
		daily, err := r.Range(MetricBTCPrice, asOf.AddDays(-wmaLookbackDays), asOf)
		if err != nil {
			return 0, false, err
		}
		v, ok := WMA200Deviation(daily)
		return v, ok, nil
	},
	Puell: func(r store.Reader, asOf model.Date) (float64, bool, error) {
		daily, err := r.Range(MetricBTCPrice, asOf.AddDays(-puellLookbackDays), asOf)
		if err != nil {
			return 0, false, err
		}
		v, ok := PuellMultiple(daily)
		return v, ok, nil
	},
	S2FDev: func(r store.Reader, asOf model.Date) (float64, bool, error) {
		price, ok, err := latestWithin(r, MetricBTCPrice, asOf, snapLookbackDays)
		if err != nil || !ok {
			return 0, false, err
		}
		supply, ok, err := latestWithin(r, MetricBTCSupply, asOf, snapLookbackDays)
		if err != nil || !ok {
			return 0, false, err
		}
		v, ok := S2FDeviation(price, supply)
		return v, ok, nil
	},
	FearGreed: func(r store.Reader, asOf model.Date) (float64, bool, error) {
		return latestWithin(r, MetricFearGreed, asOf, snapLookbackDays)
	},
	Dominance: func(r store.Reader, asOf model.Date) (float64, bool, error) {
		return latestWithin(r, MetricDominance, asOf, snapLookbackDays)
	},
}

// Names lists the registered indicator names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// latestWithin returns the most recent value of a metric no older than
// lookback days before asOf.
func latestWithin(r store.Reader, metric string, asOf model.Date, lookback int) (float64, bool, error) {
	points, err := r.Range(metric, asOf.AddDays(-lookback), asOf)
	if err != nil {
		return 0, false, err
	}
	p, ok := model.Latest(points)
	if !ok {
		return 0, false, nil
	}
	return p.Value, true, nil
}

// Rule binds an indicator to its threshold classification.
type Rule struct {
	Name       string
	Thresholds model.ThresholdRule
}

// Calculator evaluates configured indicators against stored history. It
// is stateless and reentrant: safe for concurrent dashboard reads.
type Calculator struct {
	reader store.Reader
	rules  []Rule
}

// NewCalculator validates that every configured rule names a registered
// indicator and has a well-formed threshold set. Malformed configuration
// fails here, at startup, not at computation time.
func NewCalculator(r store.Reader, rules []Rule) (*Calculator, error) {
	for _, rule := range rules {
		if _, ok := registry[rule.Name]; !ok {
			return nil, fmt.Errorf("unknown indicator %q (registered: %v)", rule.Name, Names())
		}
		if err := rule.Thresholds.Validate(); err != nil {
			return nil, fmt.Errorf("indicator %q: %w", rule.Name, err)
		}
	}
	return &Calculator{reader: r, rules: rules}, nil
}

// Compute evaluates one configured indicator as of today.
func (c *Calculator) Compute(name string) (model.IndicatorResult, error) {
	for _, rule := range c.rules {
		if rule.Name == name {
			return c.compute(rule, model.Today())
		}
	}
	return model.IndicatorResult{}, fmt.Errorf("indicator %q not configured", name)
}

// ComputeAll evaluates every configured indicator as of today, in
// configuration order.
func (c *Calculator) ComputeAll() ([]model.IndicatorResult, error) {
	return c.ComputeAllAsOf(model.Today())
}

// ComputeAllAsOf evaluates every configured indicator as of a given date.
func (c *Calculator) ComputeAllAsOf(asOf model.Date) ([]model.IndicatorResult, error) {
	results := make([]model.IndicatorResult, 0, len(c.rules))
	for _, rule := range c.rules {
		res, err := c.compute(rule, asOf)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (c *Calculator) compute(rule Rule, asOf model.Date) (model.IndicatorResult, error) {
	value, ok, err := registry[rule.Name](c.reader, asOf)
	if err != nil {
		return model.IndicatorResult{}, fmt.Errorf("compute %s: %w", rule.Name, err)
	}
	result := model.IndicatorResult{
		Name:       rule.Name,
		ComputedAt: time.Now(),
	}
	if !ok {
		result.Insufficient = true
		result.Level = model.RiskUnknown
		return result, nil
	}
	result.Value = value
	result.Level = rule.Thresholds.Classify(value)
	return result, nil
}
