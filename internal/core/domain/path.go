package domain

import "strings"

// Database layout, relative to the installation root.
const (
	// DBDir is the lock directory.
	DBDir = "var/lib/pkg"

	// DBFile is the on-disk catalogue.
	DBFile = "var/lib/pkg/db"

	// RejectedDir is where kept configuration files diverted from upgrades land.
	RejectedDir = "var/lib/pkg/rejected"

	// DefaultConfFile is the install-rule configuration consumed by install.
	DefaultConfFile = "etc/pkgadd.conf"

	// LdSoConf gates the shared-library cache refresh.
	LdSoConf = "etc/ld.so.conf"
)

// Normalize collapses any run of consecutive slashes into a single slash.
// It does not resolve "." or ".." and preserves a leading slash.
func Normalize(path string) string {
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

// RootPrefix normalizes an installation root into the prefix every
// package-relative path is resolved under. The empty string means "/".
func RootPrefix(root string) string {
	return Normalize(root + "/")
}
