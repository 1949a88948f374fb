package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "groups.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAssignsOrdinals(t *testing.T) {
	store := newTestStore(t)

	first, created, err := store.Add("First Group", -100111)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), first)

	second, created, err := store.Add("Second Group", -100222)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(2), second)
}

func TestAddIsIdempotentPerChat(t *testing.T) {
	store := newTestStore(t)

	first, created, err := store.Add("Group", -100111)
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := store.Add("Group renamed", -100111)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, again)

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, "Group", all[0].Name)
}

func TestByChatID(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Add("Group", -100111)
	require.NoError(t, err)

	g, err := store.ByChatID(-100111)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.Equal(t, "Group", g.Name)

	missing, err := store.ByChatID(-999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
