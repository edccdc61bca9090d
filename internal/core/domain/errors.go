package domain

import (
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

var (
	// ErrDatabaseBusy is returned when another process holds the database lock.
	ErrDatabaseBusy = zerr.New("package database is currently locked by another process")

	// ErrBadPackageName is returned when a package filename cannot be parsed
	// into a name and a version.
	ErrBadPackageName = zerr.New("could not determine name and/or version: invalid package name")

	// ErrEmptyPackage is returned when a package archive contains no entries.
	ErrEmptyPackage = zerr.New("empty package")

	// ErrAlreadyInstalled is returned when installing a package that is
	// already present without requesting an upgrade.
	ErrAlreadyInstalled = zerr.New("package already installed (use -u to upgrade)")

	// ErrNotInstalled is returned when upgrading or removing a package that
	// is not present in the database.
	ErrNotInstalled = zerr.New("package not installed")

	// ErrFileConflicts is returned when a candidate install would claim files
	// owned by other packages or already present on the filesystem.
	ErrFileConflicts = zerr.New("listed file(s) already installed (use -f to ignore and overwrite)")

	// ErrPermissionDenied is returned when a mutating verb runs without
	// effective uid 0.
	ErrPermissionDenied = zerr.New("only root can install/upgrade/remove packages")
)

// ConflictsError carries the set of conflicting file paths computed by the
// conflict detector. It unwraps to ErrFileConflicts.
type ConflictsError struct {
	Paths []string
}

func (e *ConflictsError) Error() string {
	return fmt.Sprintf("%s:\n%s", ErrFileConflicts.Error(), strings.Join(e.Paths, "\n"))
}

func (e *ConflictsError) Unwrap() error {
	return ErrFileConflicts
}
