// Shelfwise - Library Catalog, Roles and Blog API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

/*
Package services adapts server components to suture's Serve(ctx) model.

HTTPServerService turns http.Server's blocking ListenAndServe into a
supervised service with graceful Shutdown on cancellation.

PeriodicService runs a task on a fixed interval. The server uses it for
badger value-log GC and for reloading a file-backed access policy:

	gc := services.NewPeriodicService("badger-gc", time.Hour, func(context.Context) error {
	    return store.RunGC()
	})
	tree.AddMaintenanceService(gc)

A task error is logged and the loop continues; only a panic or context
cancellation ends Serve.
*/
package services
