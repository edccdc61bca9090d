package domain

import (
	"slices"
	"strings"
)

// Entry is one package's metadata: a version string and the ordered set of
// file paths it owns. Paths are stored without a leading slash; directory
// paths end with a slash.
type Entry struct {
	Version string
	Files   PathSet
}

// Catalogue maps package names to their entries. It holds the full installed
// state, in memory and (through the store) on disk.
type Catalogue map[string]*Entry

// Names returns the package names sorted for display and for the
// deterministic on-disk record order.
func (c Catalogue) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// OwnersOf returns the sorted names of packages whose file list contains a
// path for which match returns true. The match argument receives the path
// with a leading slash, the form user-facing owner patterns are written
// against.
func (c Catalogue) OwnersOf(match func(path string) bool) []string {
	var owners []string
	for name, entry := range c {
		for _, file := range entry.Files.Paths() {
			if match("/" + file) {
				owners = append(owners, name)
				break
			}
		}
	}
	slices.Sort(owners)
	return owners
}

// IsDirPath reports whether a stored path denotes a directory.
func IsDirPath(path string) bool {
	return strings.HasSuffix(path, "/")
}
