// Package scheduler manages the periodic scan and volume-sampling tasks.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/xbxaxd26/pump-swap-screen/internal/observability"
	"github.com/xbxaxd26/pump-swap-screen/internal/scan"
	"github.com/xbxaxd26/pump-swap-screen/internal/volume"
)

// Persister saves the screener state after each scan. Implementations
// must tolerate being called from the cron goroutine.
type Persister interface {
	Persist(ctx context.Context, snap scan.Snapshot) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Runner    *scan.Runner
	Monitor   *volume.Monitor
	Persister Persister
	Ctx       context.Context

	scanning atomic.Bool
	sampling atomic.Bool
	logger   *log.Logger
}

// NewScheduler creates a new Scheduler. persister may be nil.
func NewScheduler(ctx context.Context, runner *scan.Runner, mon *volume.Monitor, persister Persister, logger *log.Logger) *Scheduler {
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		Cron:      cron.New(),
		Runner:    runner,
		Monitor:   mon,
		Persister: persister,
		Ctx:       ctx,
		logger:    logger,
	}
}

// RegisterAll registers the scan and volume tasks.
func (s *Scheduler) RegisterAll(scanCron, volumeCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	if _, err := s.Cron.AddFunc(volumeCron, s.volumeTask); err != nil {
		return fmt.Errorf("register volume task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Printf("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.logger.Printf("[INFO] scheduler stopped")
}

// RunScanNow executes the scan task immediately (for startup warmup).
func (s *Scheduler) RunScanNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	// A slow RPC run can outlast the cron interval; skip overlapping runs.
	if !s.scanning.CompareAndSwap(false, true) {
		s.logger.Printf("[WARN] scan still running, skipping this tick")
		return
	}
	defer s.scanning.Store(false)

	s.logger.Printf("[INFO] running pool scan")
	result, err := s.Runner.Scan(s.Ctx)
	if err != nil {
		observability.RecordScan("error", result.Duration.Seconds())
		s.logger.Printf("[ERROR] pool scan: %v", err)
		return
	}
	observability.RecordScan("success", result.Duration.Seconds())
	observability.RecordDecodeFailures(result.DecodeFailures)
	s.logger.Printf("[INFO] scan done: %d accounts, %d updated, %d decode failures, %d signals in %s",
		result.AccountsSeen, result.PoolsUpdated, result.DecodeFailures, result.SignalsComputed, result.Duration)

	if s.Persister != nil {
		if err := s.Persister.Persist(s.Ctx, s.Runner.Snapshot()); err != nil {
			s.logger.Printf("[ERROR] persist state: %v", err)
		}
	}
}

func (s *Scheduler) volumeTask() {
	// Sampling is many RPC calls per pool and can outlast the cron
	// interval; skip overlapping runs like the scan task does.
	if !s.sampling.CompareAndSwap(false, true) {
		s.logger.Printf("[WARN] volume sampling still running, skipping this tick")
		return
	}
	defer s.sampling.Store(false)

	s.logger.Printf("[INFO] running volume sampling")
	s.Monitor.SampleAll(s.Ctx)
}
