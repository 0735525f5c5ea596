package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"CycleWatch/internal/dashboard"
	"CycleWatch/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the scheduler and the dashboard",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	log.Println("[INFO] CycleWatch starting...")

	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, a.updater)
	if err := sched.Register(a.cfg.Schedule.DailyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	srv := dashboard.New(a.cfg.HTTP.Listen, a.store, a.calc, a.updater, a.overallThresholds())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing update now")
		go sched.RunNow()
	}

	log.Println("[INFO] CycleWatch is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] dashboard shutdown: %v", err)
	}

	log.Println("[INFO] CycleWatch stopped")
	return nil
}
