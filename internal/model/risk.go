package model

import "fmt"

// RiskLevel is the discrete classification of an indicator value.
type RiskLevel string

const (
	RiskGreen   RiskLevel = "GREEN"
	RiskYellow  RiskLevel = "YELLOW"
	RiskRed     RiskLevel = "RED"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// ParseRiskLevel maps a config string to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch RiskLevel(s) {
	case RiskGreen, RiskYellow, RiskRed, RiskUnknown:
		return RiskLevel(s), nil
	}
	return RiskUnknown, fmt.Errorf("unknown risk level %q", s)
}

// ThresholdRule maps value ranges to risk levels. Boundaries must be
// strictly increasing and there is exactly one level per band, so
// len(Levels) == len(Boundaries)+1 and classification is total over the
// real line. A boundary is the inclusive lower bound of the band above it,
// so a value sitting exactly on a boundary classifies into the next band.
type ThresholdRule struct {
	Boundaries []float64
	Levels     []RiskLevel
}

// Validate checks rule shape and boundary monotonicity. Called at startup;
// a malformed rule is a configuration error, not a runtime condition.
func (r ThresholdRule) Validate() error {
	if len(r.Levels) != len(r.Boundaries)+1 {
		return fmt.Errorf("threshold rule: %d boundaries need %d levels, got %d",
			len(r.Boundaries), len(r.Boundaries)+1, len(r.Levels))
	}
	for i := 1; i < len(r.Boundaries); i++ {
		if r.Boundaries[i] <= r.Boundaries[i-1] {
			return fmt.Errorf("threshold rule: boundaries must be strictly increasing, got %v <= %v",
				r.Boundaries[i], r.Boundaries[i-1])
		}
	}
	for _, lvl := range r.Levels {
		if _, err := ParseRiskLevel(string(lvl)); err != nil {
			return fmt.Errorf("threshold rule: %w", err)
		}
	}
	return nil
}

// Classify returns the level of the band v falls in. Assumes a validated rule.
func (r ThresholdRule) Classify(v float64) RiskLevel {
	band := 0
	for _, b := range r.Boundaries {
		if v >= b {
			band++
		} else {
			break
		}
	}
	return r.Levels[band]
}
