package db_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pakt.dev/pakt/internal/adapters/db"
	"go.pakt.dev/pakt/internal/core/domain"
)

func TestLock_MissingDirectory(t *testing.T) {
	_, err := db.NewLock(t.TempDir(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read directory")
}

func TestLock_ExclusiveExcludesExclusive(t *testing.T) {
	root := newRoot(t)

	first, err := db.NewLock(root, true)
	require.NoError(t, err)
	defer first.Close()

	_, err = db.NewLock(root, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDatabaseBusy)
}

func TestLock_ExclusiveExcludesShared(t *testing.T) {
	root := newRoot(t)

	mutator, err := db.NewLock(root, true)
	require.NoError(t, err)
	defer mutator.Close()

	_, err = db.NewLock(root, false)
	assert.ErrorIs(t, err, domain.ErrDatabaseBusy)
}

func TestLock_SharedAdmitsShared(t *testing.T) {
	root := newRoot(t)

	first, err := db.NewLock(root, false)
	require.NoError(t, err)
	defer first.Close()

	second, err := db.NewLock(root, false)
	require.NoError(t, err)
	defer second.Close()
}

func TestLock_SharedExcludesExclusive(t *testing.T) {
	root := newRoot(t)

	reader, err := db.NewLock(root, false)
	require.NoError(t, err)
	defer reader.Close()

	_, err = db.NewLock(root, true)
	assert.ErrorIs(t, err, domain.ErrDatabaseBusy)
}

func TestLock_ReleasedOnClose(t *testing.T) {
	root := newRoot(t)

	first, err := db.NewLock(root, true)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := db.NewLock(root, true)
	require.NoError(t, err)
	require.NoError(t, second.Close())

	// Double close is harmless.
	require.NoError(t, second.Close())
}
