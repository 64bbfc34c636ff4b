// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package backup

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/logging"
	"github.com/tabularium/tabularium/internal/metrics"
)

// Webhook event names.
const (
	EventBackupCompleted  = "backup.completed"
	EventBackupFailed     = "backup.failed"
	EventRestoreCompleted = "restore.completed"
	EventCleanupCompleted = "cleanup.completed"
)

const defaultNotifyTimeout = 10 * time.Second

// NotifyEvent is the JSON body POSTed to the configured webhook.
type NotifyEvent struct {
	Event     string    `json:"event"`
	Timestamp time.Time `json:"timestamp"`
	BackupID  string    `json:"backup_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Notifier delivers operation events to a webhook URL. Delivery is best
// effort: failures are logged and counted, never propagated to the
// operation that produced the event.
type Notifier struct {
	url    string
	client *http.Client
}

// NewNotifier builds a Notifier from config. Returns nil when no webhook
// URL is configured; a nil Notifier is safe to call.
func NewNotifier(cfg *config.NotifyConfig) *Notifier {
	if cfg == nil || cfg.WebhookURL == "" {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &Notifier{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: timeout},
	}
}

// Notify POSTs the event to the webhook. Safe on a nil receiver.
func (n *Notifier) Notify(ctx context.Context, event NotifyEvent) {
	if n == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		logging.Warn().Err(err).Str("event", event.Event).Msg("Failed to marshal webhook event")
		metrics.RecordWebhookNotification(event.Event, false)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		logging.Warn().Err(err).Str("event", event.Event).Msg("Failed to build webhook request")
		metrics.RecordWebhookNotification(event.Event, false)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		logging.Warn().Err(err).Str("event", event.Event).Msg("Webhook delivery failed")
		metrics.RecordWebhookNotification(event.Event, false)
		return
	}
	defer resp.Body.Close()             //nolint:errcheck // Best effort cleanup
	io.Copy(io.Discard, resp.Body)      //nolint:errcheck // Drain for connection reuse
	if resp.StatusCode >= http.StatusMultipleChoices {
		logging.Warn().Int("status", resp.StatusCode).Str("event", event.Event).Msg("Webhook returned non-success status")
		metrics.RecordWebhookNotification(event.Event, false)
		return
	}

	metrics.RecordWebhookNotification(event.Event, true)
	logging.Debug().Str("event", event.Event).Str("backup_id", event.BackupID).Msg("Webhook delivered")
}
