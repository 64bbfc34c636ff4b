// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tabularium/tabularium/internal/config"
)

// eventSink records webhook deliveries for assertions.
type eventSink struct {
	mu     sync.Mutex
	events []NotifyEvent
	method string
	ctype  string
}

func newEventSink(t *testing.T) (*eventSink, *httptest.Server) {
	t.Helper()
	sink := &eventSink{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt NotifyEvent
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("webhook body decode error = %v", err)
		}
		sink.mu.Lock()
		sink.events = append(sink.events, evt)
		sink.method = r.Method
		sink.ctype = r.Header.Get("Content-Type")
		sink.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return sink, srv
}

func (s *eventSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Event
	}
	return out
}

func (s *eventSink) last() NotifyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events[len(s.events)-1]
}

func TestNotifierNilSafe(t *testing.T) {
	var n *Notifier
	n.Notify(context.Background(), NotifyEvent{Event: "anything"})
}

func TestNewNotifier(t *testing.T) {
	if NewNotifier(nil) != nil {
		t.Error("NewNotifier(nil) != nil")
	}
	if NewNotifier(&config.NotifyConfig{}) != nil {
		t.Error("NewNotifier with no URL != nil")
	}

	n := NewNotifier(&config.NotifyConfig{WebhookURL: "http://hooks.example/backup"})
	if n == nil {
		t.Fatal("NewNotifier with a URL = nil")
	}
	if n.client.Timeout != defaultNotifyTimeout {
		t.Errorf("default timeout = %v, want %v", n.client.Timeout, defaultNotifyTimeout)
	}

	n = NewNotifier(&config.NotifyConfig{WebhookURL: "http://hooks.example/backup", Timeout: 3 * time.Second})
	if n.client.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want the configured 3s", n.client.Timeout)
	}
}

func TestNotifierDelivery(t *testing.T) {
	sink, srv := newEventSink(t)
	n := NewNotifier(&config.NotifyConfig{WebhookURL: srv.URL})

	n.Notify(context.Background(), NotifyEvent{Event: EventBackupCompleted, BackupID: "b-1", Detail: "2 tables"})

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 1 {
		t.Fatalf("deliveries = %d, want 1", len(sink.events))
	}
	if sink.method != http.MethodPost {
		t.Errorf("method = %s, want POST", sink.method)
	}
	if sink.ctype != "application/json" {
		t.Errorf("Content-Type = %q", sink.ctype)
	}
	evt := sink.events[0]
	if evt.Event != EventBackupCompleted || evt.BackupID != "b-1" || evt.Detail != "2 tables" {
		t.Errorf("delivered event = %+v", evt)
	}
	if evt.Timestamp.IsZero() {
		t.Error("Timestamp was not filled in")
	}
}

func TestNotifierToleratesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "busy", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(&config.NotifyConfig{WebhookURL: srv.URL})
	n.Notify(context.Background(), NotifyEvent{Event: EventBackupCompleted})

	// An unreachable endpoint is equally non-fatal.
	srv.Close()
	n.Notify(context.Background(), NotifyEvent{Event: EventBackupCompleted})
}

func TestManagerNotifications(t *testing.T) {
	env := newTestEnv(t)
	sink, srv := newEventSink(t)
	env.manager.SetNotifier(NewNotifier(&config.NotifyConfig{WebhookURL: srv.URL}))

	meta := env.create(CreateOptions{}).Meta
	if got := sink.last(); got.Event != EventBackupCompleted || got.BackupID != meta.ID {
		t.Errorf("after create: %+v", got)
	}
	if !strings.Contains(sink.last().Detail, "tables") {
		t.Errorf("Detail = %q", sink.last().Detail)
	}

	if _, err := env.manager.RestoreBackup(context.Background(), meta.ID); err != nil {
		t.Fatalf("RestoreBackup() error = %v", err)
	}
	if got := sink.last(); got.Event != EventRestoreCompleted || got.BackupID != meta.ID {
		t.Errorf("after restore: %+v", got)
	}

	env.backdate(meta.ID, 40*24*time.Hour)
	if _, err := env.manager.CleanupExpired(context.Background()); err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}

	want := []string{EventBackupCompleted, EventRestoreCompleted, EventCleanupCompleted}
	if got := sink.names(); !sameStrings(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestManagerNotifiesBackupFailure(t *testing.T) {
	store := &mockStore{
		tableList: []string{"users"},
		readErr:   map[string]error{"users": errors.New("disk gone")},
	}
	env := newTestEnvWithStore(t, store)
	sink, srv := newEventSink(t)
	env.manager.SetNotifier(NewNotifier(&config.NotifyConfig{WebhookURL: srv.URL}))

	if _, err := env.manager.CreateBackup(context.Background(), CreateOptions{}); err == nil {
		t.Fatal("CreateBackup() succeeded with every table failing")
	}
	if got := sink.last(); got.Event != EventBackupFailed {
		t.Errorf("event = %+v, want backup.failed", got)
	}
}
