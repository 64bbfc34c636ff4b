// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package services

import (
	"context"
	"fmt"
)

// BackupScheduler matches the scheduler's Start/Stop lifecycle.
//
// Satisfied by *backup.Scheduler. Start spawns the timer loop and
// returns immediately; Stop blocks until the loop has drained.
type BackupScheduler interface {
	Start(ctx context.Context) error
	Stop()
}

// SchedulerService wraps the backup scheduler as a supervised service.
//
// It adapts the Start/Stop lifecycle to suture's Serve pattern:
//
//  1. Calls Start(ctx) to spawn the scheduler loop
//  2. Blocks until the context is canceled
//  3. Calls Stop() and waits for the loop to drain
type SchedulerService struct {
	scheduler BackupScheduler
	name      string
}

// NewSchedulerService creates a new scheduler service wrapper.
func NewSchedulerService(scheduler BackupScheduler) *SchedulerService {
	return &SchedulerService{
		scheduler: scheduler,
		name:      "backup-scheduler",
	}
}

// Serve implements suture.Service.
//
// If Start fails the error is returned immediately, letting suture
// restart the service under its backoff policy.
func (s *SchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("backup scheduler start failed: %w", err)
	}

	<-ctx.Done()

	s.scheduler.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it to identify the
// service in log messages.
func (s *SchedulerService) String() string {
	return s.name
}
