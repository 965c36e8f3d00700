// Package dynlevel wires the pieces of a dynamically filtered logging
// pipeline together: modules are initialized in order, share an injector
// carried on the context, and shut down gracefully.
package dynlevel

import (
	"context"
)

// Module is the base interface for all dynlevel modules.
type Module interface {
	Init(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// SyncModule extends Module with a blocking Start method for long-running services.
type SyncModule interface {
	Module
	Start(ctx context.Context) error
}

// AsyncModule extends Module with a non-blocking StartAsync method for background tasks.
type AsyncModule interface {
	Module
	StartAsync(ctx context.Context) error
}
