package engine_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pakt.dev/pakt/internal/core/domain"
	"go.pakt.dev/pakt/internal/engine"
)

func TestCheck_CleanPackage(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "foo", "1.0", "bin/foo")

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, nil, engine.CheckOptions{Links: true, Disappeared: true}))

	assert.Contains(t, out.String(), "Symlink check for foo...")
	assert.Contains(t, out.String(), "Disappeared file check for foo...")
	assert.NotContains(t, out.String(), "ERROR")
	assert.NotContains(t, out.String(), "WARNING")
}

func TestCheck_BrokenSymlink(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(env.path("usr/lib"), 0o755))
	require.NoError(t, os.Symlink("libgone.so.1", env.path("usr/lib/libgone.so")))

	env.store.Add("foo", &domain.Entry{Version: "1", Files: domain.NewPathSet("usr/lib/libgone.so")})

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, []string{"foo"}, engine.CheckOptions{Links: true}))

	assert.Contains(t, out.String(), "ERROR: "+env.path("usr/lib/libgone.so")+" -> libgone.so.1 (broken)")
}

func TestCheck_OwnSymlinkTargetIsQuiet(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "foo", "1.0", "usr/lib/libfoo.so.1")
	require.NoError(t, os.Symlink("libfoo.so.1", env.path("usr/lib/libfoo.so")))
	env.store.Catalogue()["foo"].Files.Add("usr/lib/libfoo.so")

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, []string{"foo"}, engine.CheckOptions{Links: true}))

	assert.NotContains(t, out.String(), "WARNING")
	assert.NotContains(t, out.String(), "ERROR")
}

func TestCheck_CrossPackageSymlink(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "libs", "1.0", "usr/lib/libbar.so.1")

	require.NoError(t, os.MkdirAll(env.path("usr/lib"), 0o755))
	require.NoError(t, os.Symlink("libbar.so.1", env.path("usr/lib/libbar.so")))
	env.store.Add("foo", &domain.Entry{Version: "1", Files: domain.NewPathSet("usr/lib/libbar.so")})

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, []string{"foo"}, engine.CheckOptions{Links: true}))
	assert.Contains(t, out.String(), "WARNING: "+env.path("usr/lib/libbar.so")+" -> libbar.so.1")

	// Higher verbosity names the owners on both hops.
	out.Reset()
	require.NoError(t, env.eng.Check(&out, []string{"foo"}, engine.CheckOptions{Links: true, Verbosity: 1}))
	assert.Contains(t, out.String(), "points to libs")
	assert.Contains(t, out.String(), "resolves into libs")
}

func TestCheck_AbsoluteSymlinkResolvedUnderRoot(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "foo", "1.0", "usr/lib/libfoo.so.1")

	require.NoError(t, os.MkdirAll(env.path("usr/lib"), 0o755))
	require.NoError(t, os.Symlink("/usr/lib/libfoo.so.1", env.path("usr/lib/libfoo.so")))
	env.store.Catalogue()["foo"].Files.Add("usr/lib/libfoo.so")

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, []string{"foo"}, engine.CheckOptions{Links: true}))

	// The absolute target resolves inside the root, where foo owns it.
	assert.NotContains(t, out.String(), "ERROR")
	assert.NotContains(t, out.String(), "WARNING")
}

func TestCheck_DisappearedFile(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "foo", "1.0", "bin/foo", "bin/gone")
	require.NoError(t, os.Remove(env.path("bin/gone")))

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, []string{"foo"}, engine.CheckOptions{Disappeared: true}))

	assert.Contains(t, out.String(), "ERROR: disappeared file "+env.path("bin/gone"))
	assert.NotContains(t, out.String(), "Claimed by")
}

func TestCheck_DisappearedFileOwnersAtVerbose(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "a", "1.0", "share/common")
	env.store.Add("b", &domain.Entry{Version: "1", Files: domain.NewPathSet("share/common")})
	require.NoError(t, os.Remove(env.path("share/common")))

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, []string{"a"}, engine.CheckOptions{Disappeared: true, Verbosity: 1}))

	assert.Contains(t, out.String(), "Claimed by: a,b")
}

func TestCheck_AllPackagesByDefault(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "a", "1.0", "bin/a")
	seed(t, env, "b", "1.0", "bin/b")

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, nil, engine.CheckOptions{Disappeared: true}))

	assert.Contains(t, out.String(), "Disappeared file check for a...")
	assert.Contains(t, out.String(), "Disappeared file check for b...")
}

func TestCheck_UnknownPackage(t *testing.T) {
	env := newTestEnv(t)

	var out bytes.Buffer
	require.NoError(t, env.eng.Check(&out, []string{"ghost"}, engine.CheckOptions{Links: true}))

	assert.Contains(t, env.errs.String(), "package not found: ghost")
}

func TestFindOwnersPattern(t *testing.T) {
	env := newTestEnv(t)
	env.store.Add("foo", &domain.Entry{Version: "1", Files: domain.NewPathSet("usr/bin/foo", "usr/lib/libfoo.so")})
	env.store.Add("bar", &domain.Entry{Version: "1", Files: domain.NewPathSet("usr/bin/bar")})

	owned, err := env.eng.FindOwnersPattern("^/usr/bin/")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, "bar", owned[0].Package)
	assert.Equal(t, "usr/bin/bar", owned[0].File)
	assert.Equal(t, "foo", owned[1].Package)
	assert.Equal(t, "usr/bin/foo", owned[1].File)
}

func TestFindOwnersPattern_BadPattern(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.eng.FindOwnersPattern("(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fail to compile regular expression")
}

func TestFindOwnersPattern_NoMatches(t *testing.T) {
	env := newTestEnv(t)
	env.store.Add("foo", &domain.Entry{Version: "1", Files: domain.NewPathSet("usr/bin/foo")})

	owned, err := env.eng.FindOwnersPattern("^/opt/")
	require.NoError(t, err)
	assert.Empty(t, owned)
}
