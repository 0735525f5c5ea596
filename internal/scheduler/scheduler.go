package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"CycleWatch/internal/updater"
)

// Scheduler owns the daily update cadence. The updater itself is a
// stateless call; all timing lives here.
type Scheduler struct {
	Cron    *cron.Cron
	Updater *updater.Updater
	Ctx     context.Context
}

// NewScheduler creates a Scheduler bound to a shutdown context.
func NewScheduler(ctx context.Context, upd *updater.Updater) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Updater: upd,
		Ctx:     ctx,
	}
}

// Register adds the daily update job.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the update immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily update")
	report := s.Updater.Run(s.Ctx)
	if failed := report.Failed(); failed > 0 {
		log.Printf("[WARN] daily update finished with %d failed metric(s)", failed)
	}
}
