// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
Package services provides suture.Service wrappers for the backup
daemon's components.

Each wrapper adapts a component's native lifecycle to suture's
context-aware Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

API Server (APIServerService):
  - Wraps the admin HTTP server's Start/Shutdown lifecycle
  - Drains in-flight requests on shutdown, bounded by a timeout

Backup Scheduler (SchedulerService):
  - Wraps the scheduler's Start/Stop lifecycle
  - Stop blocks until the timer loop has drained, so shutdown never
    interrupts a backup mid-write

# Usage Example

	tree, _ := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())

	tree.AddAPIService(services.NewAPIServerService(srv, 30*time.Second))
	tree.AddEngineService(services.NewSchedulerService(sched))

	tree.Serve(ctx)

Both wrappers take interfaces rather than concrete types so tests can
substitute mocks.
*/
package services
