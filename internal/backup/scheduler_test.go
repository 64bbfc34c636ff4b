// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tabularium/tabularium/internal/config"
)

func TestNewSchedulerInvalidCron(t *testing.T) {
	env := newTestEnv(t)
	_, err := NewScheduler(env.manager, &config.ScheduleConfig{Cron: "every other tuesday"})
	if err == nil {
		t.Fatal("NewScheduler() accepted a bad cron expression")
	}
	if !strings.Contains(err.Error(), "every other tuesday") {
		t.Errorf("error = %q, want the expression named", err)
	}
}

func TestNewSchedulerNeedsTiming(t *testing.T) {
	env := newTestEnv(t)
	if _, err := NewScheduler(env.manager, &config.ScheduleConfig{}); err == nil {
		t.Fatal("NewScheduler() accepted a config with no cron and no interval")
	}
}

func TestSchedulerNextRunInterval(t *testing.T) {
	env := newTestEnv(t)
	s, err := NewScheduler(env.manager, &config.ScheduleConfig{Interval: 45 * time.Minute})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	now := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	if got := s.NextRun(now); !got.Equal(now.Add(45 * time.Minute)) {
		t.Errorf("NextRun() = %v, want now plus the interval", got)
	}
}

func TestSchedulerNextRunCron(t *testing.T) {
	env := newTestEnv(t)
	s, err := NewScheduler(env.manager, &config.ScheduleConfig{Cron: "0 3 * * *"})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	now := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	want := time.Date(2026, 8, 24, 3, 0, 0, 0, time.UTC)
	if got := s.NextRun(now); !got.Equal(want) {
		t.Errorf("NextRun() = %v, want %v", got, want)
	}
}

func TestSchedulerRunOnce(t *testing.T) {
	env := newTestEnv(t)
	s, err := NewScheduler(env.manager, &config.ScheduleConfig{Interval: time.Hour})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	s.runOnce(context.Background())

	list, err := env.manager.ListBackups(ListOptions{Trigger: TriggerScheduled})
	if err != nil {
		t.Fatalf("ListBackups() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("scheduled backups = %d, want 1", len(list))
	}
	if list[0].Notes != "Scheduled backup" {
		t.Errorf("Notes = %q", list[0].Notes)
	}
}

func TestSchedulerRunOnceRetention(t *testing.T) {
	env := newTestEnv(t)
	old := env.create(CreateOptions{}).Meta
	env.backdate(old.ID, 40*24*time.Hour)

	s, err := NewScheduler(env.manager, &config.ScheduleConfig{Interval: time.Hour, RunRetention: true})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	s.runOnce(context.Background())

	if _, err := env.manager.GetBackup(old.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired backup survived the retention pass: %v", err)
	}
	list, err := env.manager.ListBackups(ListOptions{Trigger: TriggerScheduled})
	if err != nil || len(list) != 1 {
		t.Errorf("scheduled backups = %d (%v), want the fresh run kept", len(list), err)
	}
}

func TestSchedulerRunOnceBackupFailure(t *testing.T) {
	store := &mockStore{tablesErr: errors.New("store offline")}
	env := newTestEnvWithStore(t, store)
	s, err := NewScheduler(env.manager, &config.ScheduleConfig{Interval: time.Hour})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	// Must log and count the failure without giving up the loop's turn.
	s.runOnce(context.Background())

	if n := env.manager.Index().Count(); n != 0 {
		t.Errorf("catalog count = %d after a failed run, want 0", n)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	env := newTestEnv(t)
	s, err := NewScheduler(env.manager, &config.ScheduleConfig{Interval: time.Hour})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded, want already-running error")
	}
	s.Stop()
	s.Stop() // safe when not running

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart after Stop() error = %v", err)
	}
	s.Stop()
}

func TestSchedulerTicks(t *testing.T) {
	env := newTestEnv(t)
	s, err := NewScheduler(env.manager, &config.ScheduleConfig{Interval: 20 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for env.manager.Index().Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("scheduler never produced a backup")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
