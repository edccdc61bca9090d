// Package engine implements the package-state engine: conflict detection,
// the install/upgrade file-placement algorithm, ownership-aware removal and
// the integrity checker. All mutating operations assume the caller holds
// the exclusive database lock.
package engine

import (
	"go.pakt.dev/pakt/internal/core/ports"
)

// Engine drives all package-state operations against one store. Front-ends
// construct one handle per verb, so tests can hold several handles against
// different roots in one process.
type Engine struct {
	store ports.PackageStore
	log   ports.Logger
	ld    ports.LibCache
}

// New creates an Engine.
func New(store ports.PackageStore, log ports.Logger, ld ports.LibCache) *Engine {
	return &Engine{store: store, log: log, ld: ld}
}

// Refresh runs the shared-library cache hook against the store's root.
func (g *Engine) Refresh() {
	g.ld.Refresh(g.store.Root())
}
