// Package archive reads package archives: tar containers with optional
// gzip, bzip2, xz, lzip or zstd compression. The package name and version
// are encoded in the archive filename as <name>#<version>.pkg.tar[.<comp>].
package archive

import (
	"strings"

	"go.trai.ch/zerr"

	"go.pakt.dev/pakt/internal/core/domain"
)

const (
	versionDelim = "#"
	pkgExt       = ".pkg.tar"
)

// ParseFilename splits a package path into name and version. The name is
// the basename prefix before the first '#'; the version runs from after the
// first '#' to before the last ".pkg.tar" occurrence. Either being empty is
// a domain.ErrBadPackageName error.
func ParseFilename(path string) (name, version string, err error) {
	basename := path[strings.LastIndex(path, "/")+1:]

	if i := strings.Index(basename, versionDelim); i >= 0 {
		name = basename[:i]
		version = basename[i+1:]
		if j := strings.LastIndex(version, pkgExt); j >= 0 {
			version = version[:j]
		}
	} else {
		name = basename
	}

	if name == "" || version == "" {
		return "", "", badPackageName(basename)
	}
	return name, version, nil
}

func badPackageName(basename string) error {
	return zerr.With(zerr.Wrap(domain.ErrBadPackageName, basename), "file", basename)
}
