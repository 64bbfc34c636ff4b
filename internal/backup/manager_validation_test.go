// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tabularium/tabularium/internal/snapshot"
)

func TestValidateBackupValid(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta

	res, err := env.manager.ValidateBackup(meta.ID)
	if err != nil {
		t.Fatalf("ValidateBackup() error = %v", err)
	}
	if !res.Valid {
		t.Errorf("Valid = false, issues %v", res.Issues)
	}
	if res.Issues == nil || len(res.Issues) != 0 {
		t.Errorf("Issues = %#v, want empty non-nil slice", res.Issues)
	}
	if res.CheckedAt.IsZero() {
		t.Error("CheckedAt is zero")
	}
}

func TestValidateBackupFileMissing(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta
	if err := os.Remove(filepath.Join(env.dir, meta.Filename)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	res, err := env.manager.ValidateBackup(meta.ID)
	if err != nil {
		t.Fatalf("ValidateBackup() error = %v", err)
	}
	if res.Valid {
		t.Error("Valid = true for a missing file")
	}
	if len(res.Issues) != 1 || res.Issues[0] != "file missing" {
		t.Errorf("Issues = %v, want exactly [file missing]", res.Issues)
	}
}

func TestValidateBackupFileEmpty(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta
	if err := os.WriteFile(filepath.Join(env.dir, meta.Filename), nil, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	res, err := env.manager.ValidateBackup(meta.ID)
	if err != nil {
		t.Fatalf("ValidateBackup() error = %v", err)
	}
	if len(res.Issues) != 1 || res.Issues[0] != "file empty" {
		t.Errorf("Issues = %v, want exactly [file empty]", res.Issues)
	}
}

func TestValidateBackupReportsIssueUnion(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta
	path := filepath.Join(env.dir, meta.Filename)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	res, err := env.manager.ValidateBackup(meta.ID)
	if err != nil {
		t.Fatalf("ValidateBackup() error = %v", err)
	}
	if len(res.Issues) != 2 {
		t.Fatalf("Issues = %v, want size and checksum together", res.Issues)
	}
	if !strings.HasPrefix(res.Issues[0], "size mismatch") {
		t.Errorf("Issues[0] = %q, want size mismatch", res.Issues[0])
	}
	if res.Issues[1] != "checksum mismatch" {
		t.Errorf("Issues[1] = %q, want checksum mismatch", res.Issues[1])
	}
}

func TestValidateBackupChecksumOnly(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta
	path := filepath.Join(env.dir, meta.Filename)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	// Same length, different bytes: only the checksum can notice.
	data[len(data)-1] ^= 0x01
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	res, err := env.manager.ValidateBackup(meta.ID)
	if err != nil {
		t.Fatalf("ValidateBackup() error = %v", err)
	}
	if len(res.Issues) != 1 || res.Issues[0] != "checksum mismatch" {
		t.Errorf("Issues = %v, want exactly [checksum mismatch]", res.Issues)
	}
}

func TestValidateBackupStale(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta
	env.backdate(meta.ID, 40*24*time.Hour)

	res, err := env.manager.ValidateBackup(meta.ID)
	if err != nil {
		t.Fatalf("ValidateBackup() error = %v", err)
	}
	if res.Valid {
		t.Error("Valid = true for a record past the retention horizon")
	}
	if len(res.Issues) != 1 || !strings.HasPrefix(res.Issues[0], "stale") {
		t.Errorf("Issues = %v, want a single stale issue", res.Issues)
	}
	if !strings.Contains(res.Issues[0], "30 day") {
		t.Errorf("stale issue = %q, want the horizon named", res.Issues[0])
	}
}

func TestValidateBackupStaleCombinesWithFileIssues(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta
	env.backdate(meta.ID, 40*24*time.Hour)
	if err := os.Remove(filepath.Join(env.dir, meta.Filename)); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	res, err := env.manager.ValidateBackup(meta.ID)
	if err != nil {
		t.Fatalf("ValidateBackup() error = %v", err)
	}
	if len(res.Issues) != 2 || res.Issues[0] != "file missing" || !strings.HasPrefix(res.Issues[1], "stale") {
		t.Errorf("Issues = %v, want [file missing, stale ...]", res.Issues)
	}
}

func TestValidateBackupNotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.manager.ValidateBackup("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ValidateBackup() error = %v, want ErrNotFound", err)
	}
}

func TestTestRestore(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta

	res, err := env.manager.TestRestore(meta.ID)
	if err != nil {
		t.Fatalf("TestRestore() error = %v", err)
	}
	if !res.Success || res.Error != "" {
		t.Fatalf("result = %+v, want success", res)
	}
	if len(res.Tables) != 2 || res.Tables[0].Table != "users" || res.Tables[0].Rows != 2 {
		t.Errorf("Tables = %+v, want users:2 orders:0", res.Tables)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none for homogeneous rows", res.Warnings)
	}

	// A rehearsal must never touch the store.
	if len(env.store.clearCalls) != 0 || len(env.store.insertCalls) != 0 {
		t.Errorf("store touched: clears %v inserts %v", env.store.clearCalls, env.store.insertCalls)
	}
}

func TestTestRestoreCorruptSnapshot(t *testing.T) {
	env := newTestEnv(t)
	meta := env.create(CreateOptions{}).Meta
	if err := os.WriteFile(filepath.Join(env.dir, meta.Filename), []byte("not json"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	res, err := env.manager.TestRestore(meta.ID)
	if err != nil {
		t.Fatalf("TestRestore() error = %v, want nil (failure is the finding)", err)
	}
	if res.Success {
		t.Error("Success = true for a corrupt snapshot")
	}
	if !strings.Contains(res.Error, "invalid snapshot") {
		t.Errorf("Error = %q, want decode failure text", res.Error)
	}
}

func TestTestRestoreWarnsOnReshapedRows(t *testing.T) {
	env := newTestEnv(t)
	id := env.craftSnapshot(func(snap *snapshot.Snapshot) {
		snap.AddTable("users", []snapshot.Row{
			row("id", snapshot.NumberInt(1), "name", snapshot.Text("alice")),
			row("id", snapshot.NumberInt(2)),
		})
		snap.AddTable("orders", []snapshot.Row{row("id", snapshot.NumberInt(1))})
	})

	res, err := env.manager.TestRestore(id)
	if err != nil {
		t.Fatalf("TestRestore() error = %v", err)
	}
	if !res.Success {
		t.Fatalf("Success = false: %s", res.Error)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want exactly one", res.Warnings)
	}
	if !strings.Contains(res.Warnings[0], `"users"`) || !strings.Contains(res.Warnings[0], "1 of 2") {
		t.Errorf("warning = %q, want the table and row count named", res.Warnings[0])
	}
}

func TestTestRestoreNotFound(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.manager.TestRestore("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("TestRestore() error = %v, want ErrNotFound", err)
	}
}
