package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guard-tg-bot/internal/policy"
)

func TestParseCallbackPlainCommands(t *testing.T) {
	tests := []struct {
		data string
		kind CommandKind
	}{
		{"group_count", CmdGroupCount},
		{"stats_cb", CmdStats},
		{"show_group_restrictions", CmdShowRestrictions},
		{"help", CmdHelp},
		{"back_admin", CmdBackAdmin},
		{"toggle_mute", CmdToggleMute},
		{"all_groups_restrictions", CmdAllRestrictions},
	}
	for _, tt := range tests {
		cmd, err := ParseCallback(tt.data)
		require.NoError(t, err, tt.data)
		assert.Equal(t, tt.kind, cmd.Kind, tt.data)
		assert.Zero(t, cmd.ChatID, tt.data)
	}
}

func TestParseCallbackRestrictionsBackTarget(t *testing.T) {
	cmd, err := ParseCallback("show_group_restrictions|-100200300")
	require.NoError(t, err)
	assert.Equal(t, CmdShowRestrictions, cmd.Kind)
	assert.Equal(t, int64(-100200300), cmd.ChatID)

	_, err = ParseCallback("show_group_restrictions|abc")
	assert.Error(t, err)
}

func TestParseCallbackGroupTypeMenu(t *testing.T) {
	cmd, err := ParseCallback("group_type_menu|photo|-100200300")
	require.NoError(t, err)
	assert.Equal(t, CmdGroupTypeMenu, cmd.Kind)
	assert.Equal(t, policy.CategoryPhoto, cmd.Category)
	assert.Equal(t, int64(-100200300), cmd.ChatID)
}

func TestParseCallbackGroupSet(t *testing.T) {
	cmd, err := ParseCallback("group_set_true|text|-100200300")
	require.NoError(t, err)
	assert.Equal(t, CmdGroupSet, cmd.Kind)
	assert.Equal(t, policy.CategoryText, cmd.Category)
	assert.True(t, cmd.Value)

	cmd, err = ParseCallback("group_set_false|link|-100200300")
	require.NoError(t, err)
	assert.Equal(t, CmdGroupSet, cmd.Kind)
	assert.Equal(t, policy.CategoryLink, cmd.Category)
	assert.False(t, cmd.Value)
}

func TestParseCallbackAllGroups(t *testing.T) {
	cmd, err := ParseCallback("all_type_menu|sticker")
	require.NoError(t, err)
	assert.Equal(t, CmdAllTypeMenu, cmd.Kind)
	assert.Equal(t, policy.CategorySticker, cmd.Category)

	cmd, err = ParseCallback("all_set_false|voice")
	require.NoError(t, err)
	assert.Equal(t, CmdAllSet, cmd.Kind)
	assert.Equal(t, policy.CategoryVoice, cmd.Category)
	assert.False(t, cmd.Value)
}

func TestParseCallbackRejectsUnknownCategory(t *testing.T) {
	_, err := ParseCallback("group_set_true|gif|-100200300")
	assert.Error(t, err)

	_, err = ParseCallback("all_set_true|nope")
	assert.Error(t, err)
}

func TestParseCallbackRejectsMalformed(t *testing.T) {
	_, err := ParseCallback("no_such_action")
	assert.Error(t, err)

	_, err = ParseCallback("group_type_menu|photo")
	assert.Error(t, err)

	_, err = ParseCallback("group_set_true|text|notanumber")
	assert.Error(t, err)

	// Plain commands never carry extra parameters.
	_, err = ParseCallback("help|extra")
	assert.Error(t, err)
}
