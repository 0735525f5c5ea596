package indicator

import "CycleWatch/internal/model"

// OverallThresholds sets how many individual red/yellow signals trip the
// market-wide assessment.
type OverallThresholds struct {
	RedHigh   int // this many RED signals => overall RED
	RedMedium int // this many RED signals => overall YELLOW
	WarnSum   int // this many RED+YELLOW signals => overall YELLOW
}

// DefaultOverallThresholds matches a tracker running ~6 indicators.
func DefaultOverallThresholds() OverallThresholds {
	return OverallThresholds{RedHigh: 3, RedMedium: 2, WarnSum: 4}
}

// Overall folds individual indicator levels into one market assessment.
// Indicators still lacking history are ignored; if nothing has resolved
// yet, the assessment is UNKNOWN.
func Overall(results []model.IndicatorResult, t OverallThresholds) model.RiskLevel {
	red, yellow, known := 0, 0, 0
	for _, r := range results {
		switch r.Level {
		case model.RiskRed:
			red++
			known++
		case model.RiskYellow:
			yellow++
			known++
		case model.RiskGreen:
			known++
		}
	}
	switch {
	case known == 0:
		return model.RiskUnknown
	case red >= t.RedHigh:
		return model.RiskRed
	case red >= t.RedMedium || red+yellow >= t.WarnSum:
		return model.RiskYellow
	default:
		return model.RiskGreen
	}
}
