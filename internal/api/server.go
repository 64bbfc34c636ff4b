// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
server.go - HTTP Server Lifecycle

Wraps http.Server with the timeouts the admin API needs. Read and write
timeouts are generous because snapshot uploads and downloads can move
hundreds of megabytes; the header timeout stays short to bound slow
clients during the handshake.
*/

//nolint:staticcheck // File documentation, not package doc
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tabularium/tabularium/internal/config"
	"github.com/tabularium/tabularium/internal/logging"
)

// Server is the admin API HTTP server.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          zerolog.Logger
}

// NewServer creates a server for the given handler and config.
func NewServer(cfg *config.ServerConfig, handler http.Handler) *Server {
	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Minute,
			WriteTimeout:      15 * time.Minute,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logging.WithComponent("api"),
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start begins serving and blocks until the server stops. A clean
// shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("API server listening")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// Run serves until ctx is cancelled, then performs a graceful shutdown
// bounded by the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
