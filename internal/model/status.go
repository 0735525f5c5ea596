package model

import (
	"fmt"
	"time"
)

// Outcome classifies how a single metric fared in an updater run.
type Outcome string

const (
	OutcomeUpdated   Outcome = "UPDATED"
	OutcomeNoNewData Outcome = "NO_NEW_DATA"
	OutcomeFailed    Outcome = "FAILED"
)

// MetricStatus is the per-metric result of an updater run. A run never has
// a single pass/fail: one metric failing leaves the others untouched.
type MetricStatus struct {
	Metric    string  `json:"metric"`
	Outcome   Outcome `json:"outcome"`
	NewPoints int     `json:"new_points,omitempty"`
	Err       string  `json:"error,omitempty"`
}

func (s MetricStatus) String() string {
	switch s.Outcome {
	case OutcomeUpdated:
		return fmt.Sprintf("%s: updated (%d new points)", s.Metric, s.NewPoints)
	case OutcomeNoNewData:
		return fmt.Sprintf("%s: no new data", s.Metric)
	default:
		return fmt.Sprintf("%s: failed: %s", s.Metric, s.Err)
	}
}

// RunReport aggregates the per-metric statuses of one updater run.
type RunReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Statuses   []MetricStatus `json:"statuses"`
}

// Failed returns the number of metrics that failed in this run.
func (r *RunReport) Failed() int {
	n := 0
	for _, s := range r.Statuses {
		if s.Outcome == OutcomeFailed {
			n++
		}
	}
	return n
}

// Summary is a one-line digest for logging.
func (r *RunReport) Summary() string {
	updated, stale := 0, 0
	for _, s := range r.Statuses {
		switch s.Outcome {
		case OutcomeUpdated:
			updated++
		case OutcomeNoNewData:
			stale++
		}
	}
	return fmt.Sprintf("%d updated, %d unchanged, %d failed in %s",
		updated, stale, r.Failed(), r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
}
