// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package services

import (
	"context"
	"fmt"
	"time"
)

// APIServer matches the admin server's lifecycle methods.
//
// Satisfied by *api.Server. Start blocks until the server stops and
// returns nil on a clean close; Shutdown drains in-flight requests.
type APIServer interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// APIServerService wraps the admin HTTP server as a supervised service.
//
// It translates the server's blocking Start pattern into suture's
// context-aware Serve pattern:
//
//  1. Starts the server in a goroutine
//  2. Waits for context cancellation or a server error
//  3. On shutdown, calls Shutdown with the configured timeout
type APIServerService struct {
	server          APIServer
	shutdownTimeout time.Duration
	name            string
}

// NewAPIServerService creates a new API server service wrapper.
//
// The shutdownTimeout bounds how long active connections get to close
// during graceful shutdown.
func NewAPIServerService(server APIServer, shutdownTimeout time.Duration) *APIServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &APIServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "api-server",
	}
}

// Serve implements suture.Service.
//
// Returns nil if the server closed cleanly, an error if it crashed, and
// ctx.Err() after a graceful shutdown triggered by cancellation.
func (s *APIServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// The original context is already canceled, so shutdown gets
		// its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("api server shutdown failed: %w", err)
		}

		<-errCh
		return ctx.Err()
	}
}

// String implements fmt.Stringer; suture uses it to identify the
// service in log messages.
func (s *APIServerService) String() string {
	return s.name
}
