package archive

import (
	"archive/tar"
	"errors"
	"io"
	"time"

	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"

	"go.pakt.dev/pakt/internal/core/domain"
)

// Entry is the in-memory view of one archive member. Mode carries both the
// type and permission bits of a raw UNIX mode.
type Entry struct {
	Path     string
	Mode     uint32
	UID      int
	GID      int
	Size     int64
	Linkname string
	Hardlink string
	DevMajor int64
	DevMinor int64
	ModTime  time.Time

	data io.Reader
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Mode&unix.S_IFMT == unix.S_IFDIR
}

// IsSymlink reports whether the entry is a symbolic link.
func (e *Entry) IsSymlink() bool {
	return e.Mode&unix.S_IFMT == unix.S_IFLNK
}

// IsRegular reports whether the entry is a regular file.
func (e *Entry) IsRegular() bool {
	return e.Mode&unix.S_IFMT == unix.S_IFREG && e.Hardlink == ""
}

func entryMode(hdr *tar.Header) uint32 {
	mode := uint32(hdr.Mode) & 0o7777

	switch hdr.Typeflag {
	case tar.TypeDir:
		mode |= unix.S_IFDIR
	case tar.TypeSymlink:
		mode |= unix.S_IFLNK
	case tar.TypeChar:
		mode |= unix.S_IFCHR
	case tar.TypeBlock:
		mode |= unix.S_IFBLK
	case tar.TypeFifo:
		mode |= unix.S_IFIFO
	default:
		mode |= unix.S_IFREG
	}
	return mode
}

func newEntry(hdr *tar.Header, tr *tar.Reader) *Entry {
	return &Entry{
		Path:     hdr.Name,
		Mode:     entryMode(hdr),
		UID:      hdr.Uid,
		GID:      hdr.Gid,
		Size:     hdr.Size,
		Linkname: linknameOf(hdr, tar.TypeSymlink),
		Hardlink: linknameOf(hdr, tar.TypeLink),
		DevMajor: hdr.Devmajor,
		DevMinor: hdr.Devminor,
		ModTime:  hdr.ModTime,
		data:     tr,
	}
}

func linknameOf(hdr *tar.Header, typ byte) string {
	if hdr.Typeflag == typ {
		return hdr.Linkname
	}
	return ""
}

// Reader walks the members of a package archive once, in stored order.
type Reader struct {
	path  string
	rc    io.ReadCloser
	tr    *tar.Reader
	count int
}

// NewReader opens the archive at path.
func NewReader(path string) (*Reader, error) {
	rc, err := openDecompressed(path)
	if err != nil {
		return nil, err
	}
	return &Reader{path: path, rc: rc, tr: tar.NewReader(rc)}, nil
}

// Next returns the next entry, or io.EOF after the last one. Any other
// error is an archive read failure.
func (r *Reader) Next() (*Entry, error) {
	hdr, err := r.tr.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, zerr.With(zerr.Wrap(err, "could not read"), "path", r.path)
	}
	r.count++
	return newEntry(hdr, r.tr), nil
}

// Count returns the number of entries returned so far.
func (r *Reader) Count() int {
	return r.count
}

// Close releases the underlying reader chain.
func (r *Reader) Close() error {
	return r.rc.Close()
}

// OpenPackage parses the archive filename and enumerates its members,
// returning the package name and an entry holding the version and file
// list. An archive with zero members is domain.ErrEmptyPackage.
func OpenPackage(path string) (string, *domain.Entry, error) {
	name, version, err := ParseFilename(path)
	if err != nil {
		return "", nil, err
	}

	r, err := NewReader(path)
	if err != nil {
		return "", nil, err
	}
	defer r.Close()

	entry := &domain.Entry{Version: version}
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", nil, err
		}
		entry.Files.Add(e.Path)
	}

	if r.Count() == 0 {
		return "", nil, zerr.With(zerr.Wrap(domain.ErrEmptyPackage, path), "path", path)
	}

	return name, entry, nil
}
