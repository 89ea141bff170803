// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package supervisor runs the server's long-lived services under suture v4.

The tree has two layers, each with its own failure counting:

	RootSupervisor ("shelfwise")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── badger-gc       (tokens.backend=badger)
	│   └── policy-reload   (security.casbin.auto_reload with a policy file)
	└── APISupervisor ("api-layer")
	    └── http-server

A failing maintenance task is restarted with backoff and never takes the
HTTP server down with it.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)
	<-ctx.Done()
	for err := range errCh {
	    ...
	}

Supervisor events (service failures, restarts, backoff) are logged through
sutureslog, which writes to the zerolog logger via logging.NewSlogLogger.

See the services sub-package for the suture.Service wrappers.
*/
package supervisor
