// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockAPIServer is a test double for the APIServer interface.
type mockAPIServer struct {
	startErr      error
	startBlock    bool
	shutdownErr   error
	startCount    atomic.Int32
	shutdownCount atomic.Int32
	startCalled   chan struct{}
	stopCh        chan struct{}
}

func newMockAPIServer() *mockAPIServer {
	return &mockAPIServer{
		startCalled: make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
	}
}

func (m *mockAPIServer) Start() error {
	m.startCount.Add(1)

	select {
	case m.startCalled <- struct{}{}:
	default:
	}

	if m.startErr != nil {
		return m.startErr
	}

	if m.startBlock {
		<-m.stopCh
		return nil
	}

	return nil
}

func (m *mockAPIServer) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)

	return m.shutdownErr
}

func TestAPIServerServiceInterface(t *testing.T) {
	var _ suture.Service = (*APIServerService)(nil)
}

func TestNewAPIServerService(t *testing.T) {
	server := newMockAPIServer()
	svc := NewAPIServerService(server, 10*time.Second)

	if svc == nil {
		t.Fatal("NewAPIServerService returned nil")
	}
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("expected shutdown timeout 10s, got %v", svc.shutdownTimeout)
	}
	if svc.String() != "api-server" {
		t.Errorf("expected name 'api-server', got %q", svc.String())
	}
}

func TestNewAPIServerServiceDefaultTimeout(t *testing.T) {
	svc := NewAPIServerService(newMockAPIServer(), 0)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %v", svc.shutdownTimeout)
	}

	svc = NewAPIServerService(newMockAPIServer(), -5*time.Second)
	if svc.shutdownTimeout != 10*time.Second {
		t.Errorf("expected default timeout 10s, got %v", svc.shutdownTimeout)
	}
}

func TestAPIServerServiceServe(t *testing.T) {
	t.Run("shuts down gracefully on context cancellation", func(t *testing.T) {
		server := newMockAPIServer()
		server.startBlock = true
		svc := NewAPIServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		select {
		case <-server.startCalled:
		case <-time.After(time.Second):
			t.Fatal("server did not start")
		}

		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return after context cancellation")
		}

		if server.startCount.Load() != 1 {
			t.Errorf("expected 1 Start call, got %d", server.startCount.Load())
		}
		if server.shutdownCount.Load() != 1 {
			t.Errorf("expected 1 Shutdown call, got %d", server.shutdownCount.Load())
		}
	})

	t.Run("returns error on startup failure", func(t *testing.T) {
		expectedErr := errors.New("bind: address already in use")
		server := newMockAPIServer()
		server.startErr = expectedErr
		svc := NewAPIServerService(server, time.Second)

		err := svc.Serve(context.Background())

		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error wrapping %v, got %v", expectedErr, err)
		}
	})

	t.Run("returns nil when server closes cleanly", func(t *testing.T) {
		server := newMockAPIServer()
		svc := NewAPIServerService(server, time.Second)

		if err := svc.Serve(context.Background()); err != nil {
			t.Errorf("expected nil for clean close, got %v", err)
		}
	})

	t.Run("returns shutdown error if shutdown fails", func(t *testing.T) {
		shutdownErr := errors.New("shutdown timeout")
		server := newMockAPIServer()
		server.startBlock = true
		server.shutdownErr = shutdownErr
		svc := NewAPIServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())

		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		<-server.startCalled
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, shutdownErr) {
				t.Errorf("expected shutdown error, got %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("Serve did not return")
		}
	})
}

func TestAPIServerServiceWithSupervisor(t *testing.T) {
	server := newMockAPIServer()
	server.startBlock = true
	svc := NewAPIServerService(server, time.Second)

	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 3,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          2 * time.Second,
	})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	select {
	case <-server.startCalled:
	case <-time.After(time.Second):
		t.Fatal("server did not start")
	}

	cancel()
	<-errCh

	if server.shutdownCount.Load() < 1 {
		t.Error("server Shutdown was not called")
	}
}
