package engine_test

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"go.pakt.dev/pakt/internal/adapters/db"
	"go.pakt.dev/pakt/internal/adapters/logger"
	"go.pakt.dev/pakt/internal/engine"
)

// nopLibCache keeps the shared-library hook out of engine tests.
type nopLibCache struct{}

func (nopLibCache) Refresh(string) {}

// testEnv bundles one engine against one temporary root.
type testEnv struct {
	root  string
	store *db.Store
	eng   *engine.Engine
	out   *bytes.Buffer
	errs  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "var/lib/pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "var/lib/pkg/db"), nil, 0o644))

	return reopen(t, root)
}

// reopen reloads the store from disk, like a fresh process would.
func reopen(t *testing.T, root string) *testEnv {
	t.Helper()

	store, err := db.Open(root)
	require.NoError(t, err)

	log := logger.New("pakt")
	out := &bytes.Buffer{}
	errs := &bytes.Buffer{}
	log.Out = out
	log.Err = errs

	return &testEnv{
		root:  root,
		store: store,
		eng:   engine.New(store, log, nopLibCache{}),
		out:   out,
		errs:  errs,
	}
}

func (e *testEnv) path(rel string) string {
	return filepath.Join(e.root, rel)
}

// testEntry describes one member of a generated test archive.
type testEntry struct {
	name     string
	typeflag byte
	mode     int64
	content  string
	linkname string
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

// writeArchive builds a gzip package archive owned by the current user so
// extraction can restore ownership without privileges.
func writeArchive(t *testing.T, dir, filename string, entries []testEntry) string {
	t.Helper()

	path := filepath.Join(dir, filename)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := gzip.NewWriter(f)
	tw := tar.NewWriter(zw)

	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Typeflag: e.typeflag,
			Mode:     e.mode,
			Uid:      os.Getuid(),
			Gid:      os.Getgid(),
			Linkname: e.linkname,
			ModTime:  time.Unix(1700000000, 0),
		}
		if e.typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.content))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if e.typeflag == tar.TypeReg && e.content != "" {
			_, err := io.WriteString(tw, e.content)
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func hasLine(buf *bytes.Buffer, substr string) bool {
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
