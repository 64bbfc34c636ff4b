// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
scheduler.go - Scheduled Backup Runs

The scheduler drives periodic backups in serve mode. Timing comes from
either a fixed interval or a cron expression (standard 5-field syntax plus
descriptors like @daily); the cron form wins when both are set. Each run
creates one backup with the scheduled trigger and, when configured, follows
it with a retention pass.

A run that fails is logged and counted; the loop keeps going. Overlapping
runs cannot happen: the next timer is armed only after the current run
returns.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/metrics"
)

// Scheduler runs backups on a fixed interval or cron schedule.
type Scheduler struct {
	manager *Manager
	cfg     *config.ScheduleConfig
	cron    cron.Schedule

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler builds a scheduler from config. The cron expression is
// parsed up front so a bad one fails at startup, not at the first tick.
func NewScheduler(mgr *Manager, cfg *config.ScheduleConfig) (*Scheduler, error) {
	s := &Scheduler{manager: mgr, cfg: cfg}
	if cfg.Cron != "" {
		sched, err := cron.ParseStandard(cfg.Cron)
		if err != nil {
			return nil, fmt.Errorf("invalid cron expression %q: %w", cfg.Cron, err)
		}
		s.cron = sched
	} else if cfg.Interval <= 0 {
		return nil, fmt.Errorf("schedule needs a cron expression or a positive interval")
	}
	return s, nil
}

// NextRun returns the first scheduled run strictly after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	if s.cron != nil {
		return s.cron.Next(now)
	}
	return now.Add(s.cfg.Interval)
}

// Start launches the scheduler loop. The loop ends when Stop is called or
// ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.stop = make(chan struct{})

	s.wg.Add(1)
	go s.run(ctx)

	next := s.NextRun(time.Now())
	logging.Info().
		Str("cron", s.cfg.Cron).
		Dur("interval", s.cfg.Interval).
		Time("next_run", next).
		Bool("run_retention", s.cfg.RunRetention).
		Msg("Backup scheduler started")
	return nil
}

// Stop ends the loop and waits for an in-flight run to finish. Safe to
// call when not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.wg.Wait()
	logging.Info().Msg("Backup scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	for {
		timer := time.NewTimer(time.Until(s.NextRun(time.Now())))
		select {
		case <-timer.C:
			s.runOnce(ctx)
		case <-s.stop:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// runOnce performs one scheduled pass: a backup, then retention when
// configured.
func (s *Scheduler) runOnce(ctx context.Context) {
	_, err := s.manager.CreateBackup(ctx, CreateOptions{
		Trigger: TriggerScheduled,
		Notes:   "Scheduled backup",
	})
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled backup failed")
		metrics.RecordScheduledRun("failure")
	} else {
		metrics.RecordScheduledRun("success")
	}

	if s.cfg.RunRetention {
		if _, err := s.manager.CleanupExpired(ctx); err != nil {
			logging.Error().Err(err).Msg("Scheduled retention pass failed")
		}
	}
}
