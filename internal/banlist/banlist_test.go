package banlist

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeList(t *testing.T, path string, terms []string) {
	t.Helper()
	f := excelize.NewFile()
	for i, term := range terms {
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i+1), term))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func testPaths(t *testing.T, words, audio, files []string) Paths {
	t.Helper()
	dir := t.TempDir()
	p := Paths{
		Words:       filepath.Join(dir, "taqiq.xlsx"),
		AudioTitles: filepath.Join(dir, "taqiq_audio.xlsx"),
		FileStems:   filepath.Join(dir, "all.xlsx"),
	}
	writeList(t, p.Words, words)
	writeList(t, p.AudioTitles, audio)
	writeList(t, p.FileStems, files)
	return p
}

func TestLoadLowercasesAndTrims(t *testing.T) {
	paths := testPaths(t, []string{"  SPAM ", "Scam", ""}, nil, nil)
	lists := New(paths, slog.Default())

	sets := lists.Snapshot()
	assert.Len(t, sets.Words, 2)

	term, ok := sets.MatchWord([]string{"hello", "spam"})
	assert.True(t, ok)
	assert.Equal(t, "spam", term)

	_, ok = sets.MatchWord([]string{"clean"})
	assert.False(t, ok)
}

func TestMissingFileYieldsEmptySet(t *testing.T) {
	dir := t.TempDir()
	paths := Paths{
		Words:       filepath.Join(dir, "missing.xlsx"),
		AudioTitles: filepath.Join(dir, "missing2.xlsx"),
		FileStems:   filepath.Join(dir, "missing3.xlsx"),
	}
	lists := New(paths, slog.Default())

	sets := lists.Snapshot()
	assert.Empty(t, sets.Words)
	assert.Empty(t, sets.AudioTitles)
	assert.Empty(t, sets.FileStems)
}

func TestReloadSwapsWholeSnapshot(t *testing.T) {
	paths := testPaths(t, []string{"old"}, nil, nil)
	lists := New(paths, slog.Default())

	before := lists.Snapshot()
	_, ok := before.MatchWord([]string{"old"})
	require.True(t, ok)

	writeList(t, paths.Words, []string{"new"})
	counts := lists.Reload()
	assert.Equal(t, 1, counts.Words)

	// The old snapshot is untouched; the new one is complete.
	_, ok = before.MatchWord([]string{"old"})
	assert.True(t, ok)

	after := lists.Snapshot()
	_, ok = after.MatchWord([]string{"old"})
	assert.False(t, ok)
	_, ok = after.MatchWord([]string{"new"})
	assert.True(t, ok)
}

func TestMatchAudioTitleAndFileStem(t *testing.T) {
	paths := testPaths(t, nil, []string{"badsong"}, []string{"virus"})
	lists := New(paths, slog.Default())
	sets := lists.Snapshot()

	term, ok := sets.MatchAudioTitle([]string{"my", "badsong", "remix"})
	assert.True(t, ok)
	assert.Equal(t, "badsong", term)

	term, ok = sets.MatchFileStem([]string{"virus"})
	assert.True(t, ok)
	assert.Equal(t, "virus", term)
}
