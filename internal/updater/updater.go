package updater

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"CycleWatch/internal/fetch"
	"CycleWatch/internal/model"
	"CycleWatch/internal/store"
)

// Target is one metric the updater keeps current.
type Target struct {
	Metric      string
	Source      string
	SourceID    string
	InitialDays int
}

// Updater runs the incremental fetch-and-merge cycle. It is stateless
// between runs: each Run reads the store's latest dates, asks each
// adapter only for newer points, and merges them back. It is the only
// writer of the series store.
type Updater struct {
	store       store.Store
	fetchers    map[string]fetch.Fetcher
	targets     []Target
	parallelism int
}

// New creates an Updater. parallelism <= 1 means sequential; higher values
// bound the number of metrics updated concurrently (safe because the
// store serializes same-metric writes and metrics are independent).
func New(st store.Store, fetchers map[string]fetch.Fetcher, targets []Target, parallelism int) *Updater {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Updater{
		store:       st,
		fetchers:    fetchers,
		targets:     targets,
		parallelism: parallelism,
	}
}

// Run updates every target and returns the per-metric report. A single
// metric's failure never blocks the others.
func (u *Updater) Run(ctx context.Context) *model.RunReport {
	report := &model.RunReport{
		StartedAt: time.Now(),
		Statuses:  make([]model.MetricStatus, len(u.targets)),
	}

	if u.parallelism == 1 {
		for i, t := range u.targets {
			report.Statuses[i] = u.updateOne(ctx, t)
		}
	} else {
		sem := make(chan struct{}, u.parallelism)
		var wg sync.WaitGroup
		for i, t := range u.targets {
			wg.Add(1)
			sem <- struct{}{}
			go func(i int, t Target) {
				defer wg.Done()
				defer func() { <-sem }()
				report.Statuses[i] = u.updateOne(ctx, t)
			}(i, t)
		}
		wg.Wait()
	}

	report.FinishedAt = time.Now()
	for _, s := range report.Statuses {
		if s.Outcome == model.OutcomeFailed {
			log.Printf("[WARN] update %s", s)
		} else {
			log.Printf("[INFO] update %s", s)
		}
	}
	log.Printf("[INFO] update run: %s", report.Summary())
	return report
}

func (u *Updater) updateOne(ctx context.Context, t Target) model.MetricStatus {
	status := model.MetricStatus{Metric: t.Metric}

	f, ok := u.fetchers[t.Source]
	if !ok {
		status.Outcome = model.OutcomeFailed
		status.Err = fmt.Sprintf("no fetcher registered for source %q", t.Source)
		return status
	}

	latest, ok, err := u.store.LatestDate(t.Metric)
	if err != nil {
		status.Outcome = model.OutcomeFailed
		status.Err = err.Error()
		return status
	}

	req := fetch.Request{
		Metric:      t.Metric,
		ID:          t.SourceID,
		InitialDays: t.InitialDays,
	}
	if ok {
		// Strictly after the last stored point. Accidental overlap is
		// harmless because upsert is idempotent.
		req.Since = latest.AddDays(1)
	}

	points, err := f.Fetch(ctx, req)
	if err != nil {
		status.Outcome = model.OutcomeFailed
		status.Err = err.Error()
		return status
	}
	if len(points) == 0 {
		status.Outcome = model.OutcomeNoNewData
		return status
	}

	if err := u.store.Upsert(t.Metric, points); err != nil {
		status.Outcome = model.OutcomeFailed
		status.Err = err.Error()
		return status
	}

	status.Outcome = model.OutcomeUpdated
	status.NewPoints = len(points)
	return status
}
