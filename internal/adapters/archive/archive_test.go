package archive_test

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// testEntry describes one member of a generated test archive.
type testEntry struct {
	name     string
	typeflag byte
	mode     int64
	content  string
	linkname string
	uid      int
	gid      int
	devmajor int64
	devminor int64
}

func regular(name, content string, mode int64) testEntry {
	return testEntry{name: name, typeflag: tar.TypeReg, mode: mode, content: content}
}

func directory(name string, mode int64) testEntry {
	return testEntry{name: name, typeflag: tar.TypeDir, mode: mode}
}

func symlink(name, target string) testEntry {
	return testEntry{name: name, typeflag: tar.TypeSymlink, mode: 0o777, linkname: target}
}

// writeArchive builds a package archive at path, compressed according to
// the path suffix.
func writeArchive(t *testing.T, path string, entries []testEntry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	var w io.Writer = f
	var finish []func() error

	switch {
	case strings.HasSuffix(path, ".gz"):
		zw := gzip.NewWriter(f)
		w = zw
		finish = append(finish, zw.Close)
	case strings.HasSuffix(path, ".zst"):
		zw, err := zstd.NewWriter(f)
		require.NoError(t, err)
		w = zw
		finish = append(finish, zw.Close)
	}

	tw := tar.NewWriter(w)
	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Typeflag: e.typeflag,
			Mode:     e.mode,
			Uid:      e.uid,
			Gid:      e.gid,
			Linkname: e.linkname,
			Devmajor: e.devmajor,
			Devminor: e.devminor,
			ModTime:  time.Unix(1700000000, 0),
		}
		if e.typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.content))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if e.typeflag == tar.TypeReg && e.content != "" {
			_, err := tw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())

	for i := len(finish) - 1; i >= 0; i-- {
		require.NoError(t, finish[i]())
	}
	require.NoError(t, f.Close())
}

func archivePath(t *testing.T, name string) string {
	return filepath.Join(t.TempDir(), name)
}
