// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/snapshot"
)

// mockStore is an in-memory Store with per-table fault injection.
type mockStore struct {
	tableList []string
	data      map[string][]snapshot.Row

	tablesErr error
	readErr   map[string]error
	clearErr  map[string]error
	insertErr map[string]error

	// onClear fires before each ClearTable, fault checks included. Tests
	// use it to cancel contexts mid-restore.
	onClear func(table string)

	clearCalls  []string
	insertCalls map[string]int
}

func (s *mockStore) Tables(_ context.Context) ([]string, error) {
	if s.tablesErr != nil {
		return nil, s.tablesErr
	}
	return s.tableList, nil
}

func (s *mockStore) ReadTable(_ context.Context, name string) ([]snapshot.Row, error) {
	if err := s.readErr[name]; err != nil {
		return nil, err
	}
	return s.data[name], nil
}

func (s *mockStore) ClearTable(_ context.Context, name string) error {
	if s.onClear != nil {
		s.onClear(name)
	}
	if err := s.clearErr[name]; err != nil {
		return err
	}
	s.clearCalls = append(s.clearCalls, name)
	s.data[name] = nil
	return nil
}

func (s *mockStore) InsertRow(_ context.Context, name string, row snapshot.Row) error {
	if err := s.insertErr[name]; err != nil {
		return err
	}
	if s.insertCalls == nil {
		s.insertCalls = make(map[string]int)
	}
	s.insertCalls[name]++
	s.data[name] = append(s.data[name], row)
	return nil
}

// row builds a snapshot row from alternating column name, value pairs.
func row(pairs ...any) snapshot.Row {
	var r snapshot.Row
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1].(snapshot.Value))
	}
	return r
}

// testEnv is a manager over a temp directory and a two-table mock store.
type testEnv struct {
	t       *testing.T
	dir     string
	store   *mockStore
	manager *Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := &mockStore{
		tableList: []string{"users", "orders"},
		data: map[string][]snapshot.Row{
			"users": {
				row("id", snapshot.NumberInt(1), "name", snapshot.Text("alice")),
				row("id", snapshot.NumberInt(2), "name", snapshot.Text("bob")),
			},
			"orders": {},
		},
	}
	return newTestEnvWithStore(t, store)
}

func newTestEnvWithStore(t *testing.T, store *mockStore) *testEnv {
	t.Helper()

	dir := t.TempDir()
	mgr, err := NewManager(&config.BackupConfig{Dir: dir, Encoding: "json", RetentionDays: 30}, store)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	return &testEnv{t: t, dir: dir, store: store, manager: mgr}
}

// create runs a backup and fails the test on error.
func (e *testEnv) create(opts CreateOptions) *Result {
	e.t.Helper()
	res, err := e.manager.CreateBackup(context.Background(), opts)
	if err != nil {
		e.t.Fatalf("CreateBackup() error = %v", err)
	}
	return res
}

// backdate rewrites a catalog record's creation time to age ago.
func (e *testEnv) backdate(id string, age time.Duration) {
	e.t.Helper()
	meta, ok := e.manager.Index().Get(id)
	if !ok {
		e.t.Fatalf("backup %s not in catalog", id)
	}
	meta.CreatedAt = time.Now().Add(-age)
	if err := e.manager.Index().Put(meta); err != nil {
		e.t.Fatalf("Put() error = %v", err)
	}
}

// craftSnapshot lands a hand-built snapshot in the managed directory and
// registers it in the catalog, returning the backup id. Tests use it for
// shapes CreateBackup would never produce.
func (e *testEnv) craftSnapshot(build func(snap *snapshot.Snapshot)) string {
	e.t.Helper()

	id := uuid.New().String()
	now := time.Now().UTC()
	snap := snapshot.New(id, now)
	build(snap)

	filename := BackupFilename(id, now, snapshot.EncodingJSON)
	path := filepath.Join(e.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		e.t.Fatalf("Create() error = %v", err)
	}
	if err := snapshot.Encode(f, snap, snapshot.EncodingJSON); err != nil {
		e.t.Fatalf("Encode() error = %v", err)
	}
	if err := f.Close(); err != nil {
		e.t.Fatalf("Close() error = %v", err)
	}

	meta := &Metadata{
		ID:        id,
		Filename:  filename,
		Size:      fileSize(path),
		CreatedAt: now,
		Tables:    snap.TableNames(),
		Encoding:  "json",
	}
	if err := e.manager.Index().Put(meta); err != nil {
		e.t.Fatalf("Put() error = %v", err)
	}
	return id
}

// sameStrings reports element-for-element equality.
func sameStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
