package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	ucAppointment "github.com/Javier-Villarroel93/Practicas-Backend/internal/usecase/appointment"
)

const sweepTimeout = 5 * time.Minute

type Repairer interface {
	Execute(ctx context.Context) (ucAppointment.RepairReport, error)
}

// Sweep periodically recreates clinical documents missing from the document
// store. Runs never overlap.
type Sweep struct {
	repair Repairer
	logger *slog.Logger
	cron   *cron.Cron

	mu      sync.Mutex
	running bool
}

func NewSweep(repair Repairer, logger *slog.Logger) *Sweep {
	return &Sweep{
		repair: repair,
		logger: logger,
		cron:   cron.New(),
	}
}

// Start schedules the sweep with a standard cron expression or a descriptor such as
// "@every 15m". An empty schedule leaves the sweep disabled.
func (s *Sweep) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info("consistency sweep disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, s.RunOnce); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("consistency sweep scheduled", "schedule", schedule)
	return nil
}

// RunOnce performs a single sweep unless one is already in progress.
func (s *Sweep) RunOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("consistency sweep still running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	started := time.Now()
	report, err := s.repair.Execute(ctx)
	if err != nil {
		s.logger.Error("consistency sweep failed",
			"scanned", report.Scanned,
			"created", report.Created,
			"err", err,
		)
		return
	}

	s.logger.Info("consistency sweep finished",
		"scanned", report.Scanned,
		"created", report.Created,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"duration_ms", time.Since(started).Milliseconds(),
	)
}

// Stop prevents new runs and waits for a running one until ctx is done.
func (s *Sweep) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
