// Package fsutil provides the filesystem comparison and cleanup helpers the
// engine builds on. All stat calls are lstat-style: symlinks are never
// followed.
package fsutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const compareBlockSize = 4096

// Exists reports whether a stat-without-symlink-follow of path succeeds.
func Exists(path string) bool {
	var st unix.Stat_t
	return unix.Lstat(path, &st) == nil
}

// IsEmptyRegular reports whether path is a regular file with zero length.
func IsEmptyRegular(path string) bool {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return false
	}
	return st.Mode&unix.S_IFMT == unix.S_IFREG && st.Size == 0
}

// ContentEqual compares two paths of the same file type: regular files by
// byte content, symlinks by target, character and block devices by device
// number. All other type combinations are unequal.
func ContentEqual(a, b string) bool {
	var st1, st2 unix.Stat_t
	if unix.Lstat(a, &st1) != nil || unix.Lstat(b, &st2) != nil {
		return false
	}

	t1 := st1.Mode & unix.S_IFMT
	t2 := st2.Mode & unix.S_IFMT

	switch {
	case t1 == unix.S_IFREG && t2 == unix.S_IFREG:
		return regularFilesEqual(a, b)
	case t1 == unix.S_IFLNK && t2 == unix.S_IFLNK:
		target1, err1 := os.Readlink(a)
		target2, err2 := os.Readlink(b)
		return err1 == nil && err2 == nil && target1 == target2
	case t1 == unix.S_IFCHR && t2 == unix.S_IFCHR:
		return st1.Rdev == st2.Rdev
	case t1 == unix.S_IFBLK && t2 == unix.S_IFBLK:
		return st1.Rdev == st2.Rdev
	}
	return false
}

func regularFilesEqual(a, b string) bool {
	f1, err := os.Open(a)
	if err != nil {
		return false
	}
	defer f1.Close()

	f2, err := os.Open(b)
	if err != nil {
		return false
	}
	defer f2.Close()

	buf1 := make([]byte, compareBlockSize)
	buf2 := make([]byte, compareBlockSize)

	for {
		n1, err1 := io.ReadFull(f1, buf1)
		n2, err2 := io.ReadFull(f2, buf2)

		if n1 != n2 || !bytes.Equal(buf1[:n1], buf2[:n2]) {
			return false
		}
		if err1 != nil || err2 != nil {
			return atEOF(err1) && atEOF(err2)
		}
	}
}

func atEOF(err error) bool {
	return err == io.EOF || err == io.ErrUnexpectedEOF
}

// PermsEqual compares mode bits, uid and gid of two paths.
func PermsEqual(a, b string) bool {
	var st1, st2 unix.Stat_t
	if unix.Lstat(a, &st1) != nil || unix.Lstat(b, &st2) != nil {
		return false
	}
	return st1.Mode == st2.Mode && st1.Uid == st2.Uid && st1.Gid == st2.Gid
}

// PruneUp removes path and, while removal keeps succeeding, its parent
// directories, stopping before basedir. Failures end the walk silently; a
// failed removal never recurses.
func PruneUp(basedir, path string) {
	if path == basedir {
		return
	}
	if err := os.Remove(path); err != nil {
		return
	}
	PruneUp(basedir, filepath.Dir(path))
}
