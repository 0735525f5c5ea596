package model

import "time"

// IndicatorResult is the outcome of one indicator computation. It is a
// view, recomputed on demand and never persisted.
type IndicatorResult struct {
	Name         string    `json:"name"`
	Value        float64   `json:"value"`
	Insufficient bool      `json:"insufficient_data"`
	Level        RiskLevel `json:"level"`
	ComputedAt   time.Time `json:"computed_at"`
}
