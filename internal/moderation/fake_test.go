package moderation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"guard-tg-bot/internal/banlist"
	"guard-tg-bot/internal/eventlog"
	"guard-tg-bot/internal/policy"
	"guard-tg-bot/internal/registry"
)

// fakeTransport records every transport call for assertions.
type fakeTransport struct {
	mu sync.Mutex

	selfID     int64
	selfStatus string
	statusErr  error
	deleteErr  error

	sent       map[int64][]string
	replies    []string
	forwards   int
	deleted    int
	restricted map[int64]int64
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		selfID:     9000,
		selfStatus: StatusAdministrator,
		sent:       make(map[int64][]string),
		restricted: make(map[int64]int64),
	}
}

func (f *fakeTransport) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[chatID] = append(f.sent[chatID], text)
	return nil
}

func (f *fakeTransport) Reply(chatID int64, messageID int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, text)
	return nil
}

func (f *fakeTransport) DeleteMessage(chatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted++
	return nil
}

func (f *fakeTransport) ForwardMessage(toChatID, fromChatID int64, messageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards++
	return nil
}

func (f *fakeTransport) RestrictMember(chatID, userID int64, untilUnix int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restricted[userID] = untilUnix
	return nil
}

func (f *fakeTransport) ChatMemberStatus(chatID, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return "", f.statusErr
	}
	return f.selfStatus, nil
}

func (f *fakeTransport) SelfID() int64 {
	return f.selfID
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, msgs := range f.sent {
		n += len(msgs)
	}
	return n
}

func writeList(t *testing.T, path string, terms []string) {
	t.Helper()
	f := excelize.NewFile()
	for i, term := range terms {
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i+1), term))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func newTestLists(t *testing.T, words, audio, files []string) *banlist.Lists {
	t.Helper()
	dir := t.TempDir()
	paths := banlist.Paths{
		Words:       filepath.Join(dir, "taqiq.xlsx"),
		AudioTitles: filepath.Join(dir, "taqiq_audio.xlsx"),
		FileStems:   filepath.Join(dir, "all.xlsx"),
	}
	writeList(t, paths.Words, words)
	writeList(t, paths.AudioTitles, audio)
	writeList(t, paths.FileStems, files)
	return banlist.New(paths, slog.Default())
}

func newTestPolicies(t *testing.T) policy.Store {
	t.Helper()
	store, err := policy.NewSQLiteStore(filepath.Join(t.TempDir(), "policies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestEvents(t *testing.T) eventlog.Store {
	t.Helper()
	store, err := eventlog.NewSQLiteStore(filepath.Join(t.TempDir(), "logs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestRegistry(t *testing.T) registry.Store {
	t.Helper()
	store, err := registry.NewSQLiteStore(filepath.Join(t.TempDir(), "groups.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
