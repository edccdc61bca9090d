package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pakt.dev/pakt/internal/core/domain"
)

func TestFindConflicts_Database(t *testing.T) {
	env := newTestEnv(t)
	env.store.Add("a", &domain.Entry{Version: "1", Files: domain.NewPathSet("bin/x", "bin/y")})

	files := domain.NewPathSet("bin/x", "bin/z")
	conflicts := env.eng.FindConflicts("b", &files)

	assert.Equal(t, []string{"bin/x"}, conflicts.Paths())
}

func TestFindConflicts_Filesystem(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(env.path("bin/x")), 0o755))
	require.NoError(t, os.WriteFile(env.path("bin/x"), []byte("unowned"), 0o644))

	files := domain.NewPathSet("bin/x", "bin/y")
	conflicts := env.eng.FindConflicts("b", &files)

	assert.Equal(t, []string{"bin/x"}, conflicts.Paths())
}

func TestFindConflicts_DirectoriesExcluded(t *testing.T) {
	env := newTestEnv(t)
	env.store.Add("a", &domain.Entry{Version: "1", Files: domain.NewPathSet("share/", "share/a.dat")})
	require.NoError(t, os.MkdirAll(env.path("share"), 0o755))

	files := domain.NewPathSet("share/", "share/b.dat")
	conflicts := env.eng.FindConflicts("b", &files)

	assert.Equal(t, 0, conflicts.Len())
}

func TestFindConflicts_SelfUpgradeIsClean(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "foo", "1.0", "bin/foo", "etc/foo.conf")

	// Re-examining an installed package's own content finds nothing.
	files := env.store.Catalogue()["foo"].Files.Clone()
	conflicts := env.eng.FindConflicts("foo", &files)

	assert.Equal(t, 0, conflicts.Len())
}

func TestFindConflicts_UpgradeSeesOtherOwners(t *testing.T) {
	env := newTestEnv(t)
	seed(t, env, "foo", "1.0", "bin/foo")
	seed(t, env, "other", "1.0", "bin/tool")

	files := domain.NewPathSet("bin/foo", "bin/tool")
	conflicts := env.eng.FindConflicts("foo", &files)

	assert.Equal(t, []string{"bin/tool"}, conflicts.Paths())
}
