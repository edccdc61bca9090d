package engine

import (
	"go.pakt.dev/pakt/internal/adapters/fsutil"
	"go.pakt.dev/pakt/internal/core/domain"
)

// FindConflicts computes the set of file paths that would clash if the
// candidate package (name, files) were installed. Four ordered phases:
// database intersections with other packages, filesystem collisions,
// directory exclusion, and self-exclusion of paths the installed
// incarnation of the same package already owns.
func (g *Engine) FindConflicts(name string, files *domain.PathSet) domain.PathSet {
	var conflicts domain.PathSet
	catalogue := g.store.Catalogue()

	// Conflicting files in the database.
	for other, entry := range catalogue {
		if other == name {
			continue
		}
		for _, p := range files.Intersect(&entry.Files) {
			conflicts.Add(p)
		}
	}

	// Conflicting files on the filesystem.
	root := g.store.Root()
	for _, p := range files.Paths() {
		if conflicts.Has(p) {
			continue
		}
		if fsutil.Exists(domain.Normalize(root + "/" + p)) {
			conflicts.Add(p)
		}
	}

	// Directories are shareable and never conflict.
	for _, p := range append([]string(nil), conflicts.Paths()...) {
		if domain.IsDirPath(p) {
			conflicts.Remove(p)
		}
	}

	// On upgrade, files the package already owns are not conflicts.
	if entry, ok := catalogue[name]; ok {
		conflicts.Subtract(&entry.Files)
	}

	return conflicts
}
