package ports

import "go.pakt.dev/pakt/internal/core/domain"

// PackageStore is the in-memory view of the installed-package catalogue with
// an atomic on-disk commit.
type PackageStore interface {
	// Root returns the normalized installation root, ending with a slash.
	Root() string

	// Catalogue returns the live in-memory catalogue. The engine mutates the
	// returned entries directly; callers must Commit to persist.
	Catalogue() domain.Catalogue

	// Add inserts or replaces a package entry.
	Add(name string, entry *domain.Entry)

	// Remove erases a package entry.
	Remove(name string)

	// Find reports whether a package is installed.
	Find(name string) bool

	// FilesOf returns the sorted file list of an installed package, or nil.
	FilesOf(name string) []string

	// Commit writes the catalogue to disk atomically.
	Commit() error
}
