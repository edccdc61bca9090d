package archive

import (
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"

	"go.pakt.dev/pakt/internal/core/domain"
)

// Extractor materializes archive entries on the filesystem, preserving
// owner, permissions and mtime, and unlinking existing targets before
// creating new ones. Root resolves hardlink targets.
type Extractor struct {
	Root string
}

// Extract writes entry to target. Missing parent directories are created.
func (x *Extractor) Extract(e *Entry, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "could not create directory"), "path", filepath.Dir(target))
	}

	switch {
	case e.IsDir():
		return x.extractDir(e, target)
	case e.IsSymlink():
		return x.extractSymlink(e, target)
	case e.Hardlink != "":
		return x.extractHardlink(e, target)
	case e.Mode&unix.S_IFMT == unix.S_IFCHR,
		e.Mode&unix.S_IFMT == unix.S_IFBLK,
		e.Mode&unix.S_IFMT == unix.S_IFIFO:
		return x.extractNode(e, target)
	default:
		return x.extractRegular(e, target)
	}
}

func (x *Extractor) extractDir(e *Entry, target string) error {
	if st, err := os.Lstat(target); err == nil && !st.IsDir() {
		if err := os.Remove(target); err != nil {
			return wrapExtract(err, target)
		}
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return wrapExtract(err, target)
	}
	return x.applyMetadata(e, target)
}

func (x *Extractor) extractRegular(e *Entry, target string) error {
	if err := unlinkExisting(target); err != nil {
		return err
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, os.FileMode(e.Mode&0o777))
	if err != nil {
		return wrapExtract(err, target)
	}
	if _, err := io.Copy(f, e.data); err != nil {
		f.Close()
		return wrapExtract(err, target)
	}
	if err := f.Close(); err != nil {
		return wrapExtract(err, target)
	}
	return x.applyMetadata(e, target)
}

func (x *Extractor) extractSymlink(e *Entry, target string) error {
	if err := unlinkExisting(target); err != nil {
		return err
	}
	if err := os.Symlink(e.Linkname, target); err != nil {
		return wrapExtract(err, target)
	}
	if err := os.Lchown(target, e.UID, e.GID); err != nil {
		return wrapExtract(err, target)
	}
	return nil
}

func (x *Extractor) extractHardlink(e *Entry, target string) error {
	if err := unlinkExisting(target); err != nil {
		return err
	}
	source := domain.Normalize(x.Root + "/" + e.Hardlink)
	if err := os.Link(source, target); err != nil {
		return wrapExtract(err, target)
	}
	return nil
}

func (x *Extractor) extractNode(e *Entry, target string) error {
	if err := unlinkExisting(target); err != nil {
		return err
	}
	dev := unix.Mkdev(uint32(e.DevMajor), uint32(e.DevMinor))
	if err := unix.Mknod(target, e.Mode, int(dev)); err != nil {
		return wrapExtract(err, target)
	}
	return x.applyMetadata(e, target)
}

// applyMetadata sets owner, then permissions, then mtime. Permissions go
// after ownership so set-id bits survive the chown.
func (x *Extractor) applyMetadata(e *Entry, target string) error {
	if err := os.Lchown(target, e.UID, e.GID); err != nil {
		return wrapExtract(err, target)
	}
	if err := unix.Chmod(target, e.Mode&0o7777); err != nil {
		return wrapExtract(err, target)
	}
	if err := os.Chtimes(target, e.ModTime, e.ModTime); err != nil {
		return wrapExtract(err, target)
	}
	return nil
}

func unlinkExisting(target string) error {
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return wrapExtract(err, target)
	}
	return nil
}

func wrapExtract(err error, target string) error {
	return zerr.With(zerr.Wrap(err, "could not extract"), "path", target)
}
