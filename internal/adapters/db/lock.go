// Package db implements the package database: the advisory directory lock
// and the flat-file catalogue store with its atomic commit protocol.
package db

import (
	"errors"
	"os"

	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"

	"go.pakt.dev/pakt/internal/core/domain"
)

// Lock holds an advisory whole-directory lock on <root>/var/lib/pkg.
// Acquisition is non-blocking: an unavailable lock fails immediately with
// domain.ErrDatabaseBusy. At most one Lock is live per process.
type Lock struct {
	dir *os.File
}

// NewLock acquires the database lock. Mutators pass exclusive=true; readers
// take a shared lock, which admits other readers and excludes mutators.
func NewLock(root string, exclusive bool) (*Lock, error) {
	dirname := domain.Normalize(root + "/" + domain.DBDir)

	dir, err := os.Open(dirname)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "could not read directory"), "path", dirname)
	}

	how := unix.LOCK_SH
	if exclusive {
		how = unix.LOCK_EX
	}

	if err := unix.Flock(int(dir.Fd()), how|unix.LOCK_NB); err != nil {
		dir.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, domain.ErrDatabaseBusy
		}
		return nil, zerr.With(zerr.Wrap(err, "could not lock directory"), "path", dirname)
	}

	return &Lock{dir: dir}, nil
}

// Close releases the lock and closes the directory handle. It is safe to
// call on all exit paths, including propagated errors.
func (l *Lock) Close() error {
	if l == nil || l.dir == nil {
		return nil
	}
	_ = unix.Flock(int(l.dir.Fd()), unix.LOCK_UN)
	err := l.dir.Close()
	l.dir = nil
	return err
}
