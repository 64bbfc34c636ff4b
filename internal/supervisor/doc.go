// Tabularium - Logical Database Backup and Restore Engine
// Copyright 2026 The Tabularium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tabularium/tabularium

/*
Package supervisor provides process supervision for the backup daemon
using suture v4.

The daemon has two long-running components: the backup scheduler and the
admin HTTP server. Each lives under its own child supervisor so a crash
in one is restarted with backoff while the other keeps running.

# Overview

	RootSupervisor ("tabularium")
	├── EngineSupervisor ("engine-layer")
	│   └── SchedulerService
	└── APISupervisor ("api-layer")
	    └── APIServerService

# Usage Example

Basic setup in the serve command:

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddEngineService(services.NewSchedulerService(sched))
	tree.AddAPIService(services.NewAPIServerService(srv, cfg.Server.ShutdownTimeout))

	// Blocks until the context is canceled.
	return tree.Serve(ctx)

# Configuration

TreeConfig controls restart behavior. Defaults match suture's
production values:

  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

Each service failure increments a counter that decays exponentially;
when the counter crosses the threshold the supervisor waits out the
backoff before restarting.

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return nil for a clean stop (no restart), an error for a crash
(restart), and return promptly when the context is canceled.

# What Is NOT Supervised

The database store is not supervised. It is an embedded connection
handle, not a long-running service; if DuckDB or SQLite fails the
operations report it and the readiness probe turns the instance
unready.

# Structured Logging

Supervisor events flow through sutureslog into the zerolog pipeline via
the logging package's slog adapter, so service starts, stops and
restarts appear in the same stream as everything else.

# See Also

  - internal/supervisor/services: service wrappers
  - github.com/thejerf/suture/v4: underlying library
*/
package supervisor
