package archive

import (
	"errors"
	"fmt"
	"io"
	"os/user"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"

	"go.pakt.dev/pakt/internal/adapters/fsutil"
	"go.pakt.dev/pakt/internal/core/domain"
)

// Footprint writes the deterministic manifest of an archive: one line per
// entry, sorted by path, with permissions, owner and special suffixes. The
// output is intended to be diffable across builds of the same package, so
// symlinks always report "lrwxrwxrwx" regardless of their stored mode.
func Footprint(w io.Writer, path string) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	var files []*Entry
	for {
		e, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		files = append(files, e)
	}

	if len(files) == 0 {
		return zerr.With(zerr.Wrap(domain.ErrEmptyPackage, path), "path", path)
	}

	slices.SortFunc(files, func(a, b *Entry) int {
		return strings.Compare(a.Path, b.Path)
	})

	names := newNameCache()
	var b strings.Builder
	for _, file := range files {
		b.Reset()

		b.WriteString(permsOf(file, files))
		b.WriteByte('\t')
		b.WriteString(names.user(file.UID))
		b.WriteByte('/')
		b.WriteString(names.group(file.GID))
		b.WriteByte('\t')
		b.WriteString(file.Path)

		switch {
		case file.IsSymlink():
			b.WriteString(" -> ")
			b.WriteString(file.Linkname)
		case file.Mode&unix.S_IFMT == unix.S_IFCHR,
			file.Mode&unix.S_IFMT == unix.S_IFBLK:
			fmt.Fprintf(&b, " (%d, %d)", file.DevMajor, file.DevMinor)
		case file.IsRegular() && file.Size == 0:
			b.WriteString(" (EMPTY)")
		}

		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return zerr.Wrap(err, "could not write footprint")
		}
	}

	return nil
}

// permsOf renders an entry's permission column. Hardlink entries take the
// mode of their resolved target, found by binary search in the sorted list.
func permsOf(file *Entry, sorted []*Entry) string {
	if file.IsSymlink() {
		return "lrwxrwxrwx"
	}

	mode := file.Mode
	if file.Hardlink != "" {
		if i, found := slices.BinarySearchFunc(sorted, file.Hardlink, func(e *Entry, path string) int {
			return strings.Compare(e.Path, path)
		}); found {
			mode = sorted[i].Mode
		}
	}
	return fsutil.ModeString(mode)
}

// nameCache resolves uid/gid to names, falling back to the numeric form.
type nameCache struct {
	users  map[int]string
	groups map[int]string
}

func newNameCache() *nameCache {
	return &nameCache{users: make(map[int]string), groups: make(map[int]string)}
}

func (c *nameCache) user(uid int) string {
	if name, ok := c.users[uid]; ok {
		return name
	}
	name := strconv.Itoa(uid)
	if u, err := user.LookupId(name); err == nil {
		name = u.Username
	}
	c.users[uid] = name
	return name
}

func (c *nameCache) group(gid int) string {
	if name, ok := c.groups[gid]; ok {
		return name
	}
	name := strconv.Itoa(gid)
	if g, err := user.LookupGroupId(name); err == nil {
		name = g.Name
	}
	c.groups[gid] = name
	return name
}
