package engine

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.pakt.dev/pakt/internal/adapters/fsutil"
	"go.pakt.dev/pakt/internal/core/domain"
)

// RemovePackage erases a package from the catalogue and deletes its files,
// leaving alone every path still referenced by another package.
func (g *Engine) RemovePackage(name string) {
	g.RemovePackageKeeping(name, domain.PathSet{})
}

// RemovePackageKeeping is RemovePackage with a keep-list: paths in keep are
// neither deleted nor counted against the package.
func (g *Engine) RemovePackageKeeping(name string, keep domain.PathSet) {
	catalogue := g.store.Catalogue()
	entry, ok := catalogue[name]
	if !ok {
		return
	}

	files := entry.Files.Clone()
	g.store.Remove(name)

	files.Subtract(&keep)

	// Don't delete files that still have references.
	for _, other := range catalogue {
		files.Subtract(&other.Files)
	}

	g.deleteFiles(files)
}

// RemoveFiles erases the given paths from every catalogue entry and deletes
// them from the filesystem, minus the keep-list.
func (g *Engine) RemoveFiles(files, keep domain.PathSet) {
	for _, entry := range g.store.Catalogue() {
		entry.Files.Subtract(&files)
	}

	files = files.Clone()
	files.Subtract(&keep)

	g.deleteFiles(files)
}

// deleteFiles removes paths in reverse sorted order, so directories are
// visited after their contents. A directory that is still populated fails
// with ENOTEMPTY and is skipped; other failures are reported and absorbed.
func (g *Engine) deleteFiles(files domain.PathSet) {
	root := g.store.Root()
	paths := files.Paths()

	for i := len(paths) - 1; i >= 0; i-- {
		filename := domain.Normalize(root + "/" + paths[i])
		if !fsutil.Exists(filename) {
			continue
		}
		if err := os.Remove(filename); err != nil {
			if errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
				continue
			}
			g.log.Warn(fmt.Sprintf("could not remove %s: %v", filename, underlying(err)))
		}
	}
}

func underlying(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err
	}
	return err
}
