package welcome

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "guard-tg-bot/internal/errors"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "welcome.json")
	store, err := Load(path)
	require.NoError(t, err)
	return store, path
}

func TestLoadCreatesDefaults(t *testing.T) {
	store, _ := newTestStore(t)

	cfg := store.Get()
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.MuteEnabled)
	assert.Equal(t, 300, cfg.MuteDurationSeconds)
	assert.NotEmpty(t, cfg.Message)
}

func TestMutationsPersistAcrossLoads(t *testing.T) {
	store, path := newTestStore(t)

	require.NoError(t, store.SetMessage("Salom!"))
	require.NoError(t, store.SetMuteDuration(60))
	_, err := store.ToggleEnabled()
	require.NoError(t, err)

	reloaded, err := Load(path)
	require.NoError(t, err)
	cfg := reloaded.Get()
	assert.Equal(t, "Salom!", cfg.Message)
	assert.Equal(t, 60, cfg.MuteDurationSeconds)
	assert.False(t, cfg.Enabled)
}

func TestSetMuteDurationBounds(t *testing.T) {
	store, _ := newTestStore(t)

	assert.ErrorIs(t, store.SetMuteDuration(29), apperrors.ErrDurationTooShort)
	assert.ErrorIs(t, store.SetMuteDuration(31622401), apperrors.ErrDurationTooLong)
	assert.NoError(t, store.SetMuteDuration(30))
	assert.NoError(t, store.SetMuteDuration(31622400))
}

func TestSetMessageRejectsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	assert.ErrorIs(t, store.SetMessage(""), apperrors.ErrEmptyMessage)
}

func TestToggleMute(t *testing.T) {
	store, _ := newTestStore(t)

	enabled, err := store.ToggleMute()
	require.NoError(t, err)
	assert.False(t, enabled)

	enabled, err = store.ToggleMute()
	require.NoError(t, err)
	assert.True(t, enabled)
}
