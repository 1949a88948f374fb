package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"guard-tg-bot/internal/banlist"
	"guard-tg-bot/internal/eventlog"
	"guard-tg-bot/internal/moderation"
	"guard-tg-bot/internal/policy"
	"guard-tg-bot/internal/registry"
	"guard-tg-bot/internal/session"
	"guard-tg-bot/internal/welcome"
)

const (
	testChatID  = int64(-100200300)
	testAdminID = int64(777)
	testUserID  = int64(42)
)

// stubBotClient answers every Bot API request with success; getMe and
// getChatMember carry just enough result to satisfy the callers.
type stubBotClient struct{}

func (stubBotClient) Do(req *http.Request) (*http.Response, error) {
	body := `{"ok":true,"result":{}}`
	switch {
	case strings.Contains(req.URL.Path, "getMe"):
		body = `{"ok":true,"result":{"id":9000,"is_bot":true,"first_name":"Guard","username":"guard_bot"}}`
	case strings.Contains(req.URL.Path, "getChatMember"):
		body = `{"ok":true,"result":{"status":"administrator","user":{"id":9000,"is_bot":true,"first_name":"Guard"}}}`
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil
}

func newTestBotAPI(t *testing.T) *tgbotapi.BotAPI {
	t.Helper()
	api, err := tgbotapi.NewBotAPIWithClient("test-token", tgbotapi.APIEndpoint, stubBotClient{})
	require.NoError(t, err)
	return api
}

func writeWordList(t *testing.T, path string, terms []string) {
	t.Helper()
	f := excelize.NewFile()
	for i, term := range terms {
		require.NoError(t, f.SetCellValue("Sheet1", fmt.Sprintf("A%d", i+1), term))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func newTestHandler(t *testing.T, words []string, logger *slog.Logger) (*Handler, eventlog.Store) {
	t.Helper()
	dir := t.TempDir()

	policies, err := policy.NewSQLiteStore(filepath.Join(dir, "policies.db"))
	require.NoError(t, err)
	t.Cleanup(func() { policies.Close() })

	groups, err := registry.NewSQLiteStore(filepath.Join(dir, "groups.db"))
	require.NoError(t, err)
	t.Cleanup(func() { groups.Close() })

	events, err := eventlog.NewSQLiteStore(filepath.Join(dir, "logs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	paths := banlist.Paths{
		Words:       filepath.Join(dir, "taqiq.xlsx"),
		AudioTitles: filepath.Join(dir, "taqiq_audio.xlsx"),
		FileStems:   filepath.Join(dir, "all.xlsx"),
	}
	writeWordList(t, paths.Words, words)
	lists := banlist.New(paths, logger)

	welcomeStore, err := welcome.Load(filepath.Join(dir, "welcome.json"))
	require.NoError(t, err)

	api := newTestBotAPI(t)
	transport := NewAPITransport(api)
	joins := moderation.NewJoinTracker()
	pipeline := moderation.NewPipeline(
		transport, policies, lists, events, joins, []int64{testAdminID}, logger)
	greeter := moderation.NewGreeter(transport, groups, policies, welcomeStore, joins, logger)

	handler := NewHandler(
		api, pipeline, greeter, policies, groups, events, lists,
		welcomeStore, session.NewStore(), logger)
	return handler, events
}

func textUpdate(text string, entities []tgbotapi.MessageEntity) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			MessageID: 10,
			From:      &tgbotapi.User{ID: testUserID, UserName: "tester"},
			Date:      int(time.Now().Unix()),
			Chat:      &tgbotapi.Chat{ID: testChatID, Type: "supergroup", Title: "Test guruh"},
			Text:      text,
			Entities:  entities,
		},
	}
}

func TestHandleUpdateModeratesCommandPrefixedText(t *testing.T) {
	h, events := newTestHandler(t, []string{"badword"}, slog.Default())

	h.HandleUpdate(context.Background(), textUpdate("badword here", nil))
	h.HandleUpdate(context.Background(), textUpdate("/foo badword here",
		[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 4}}))

	// A leading unknown command must not dodge the banned-word scan.
	count, err := events.CountSince(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestHandleUpdateKnownCommandSkipsModeration(t *testing.T) {
	h, events := newTestHandler(t, []string{"badword"}, slog.Default())

	h.HandleUpdate(context.Background(), textUpdate("/start badword",
		[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}}))

	count, err := events.CountSince(time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

// captureHandler records every slog line with its resolved attributes.
type captureHandler struct {
	mu      *sync.Mutex
	records *[]map[string]any
	attrs   []slog.Attr
}

func newCaptureLogger() (*slog.Logger, *captureHandler) {
	h := &captureHandler{mu: &sync.Mutex{}, records: &[]map[string]any{}}
	return slog.New(h), h
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	m := map[string]any{"msg": r.Message}
	for _, a := range h.attrs {
		m[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	*h.records = append(*h.records, m)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	child := *h
	child.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &child
}

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func (h *captureHandler) find(msg string) (map[string]any, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, m := range *h.records {
		if m["msg"] == msg {
			return m, true
		}
	}
	return nil, false
}

func TestHandleUpdateTraceIDReachesDownstreamLogs(t *testing.T) {
	logger, capture := newCaptureLogger()
	h, _ := newTestHandler(t, nil, logger)

	h.HandleUpdate(context.Background(), tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:   "cb1",
			From: &tgbotapi.User{ID: testAdminID},
			Data: "bogus|data",
			Message: &tgbotapi.Message{
				MessageID: 11,
				Chat:      &tgbotapi.Chat{ID: testAdminID, Type: "private"},
			},
		},
	})

	received, ok := capture.find("update received")
	require.True(t, ok)
	parseFailed, ok := capture.find("failed to parse callback")
	require.True(t, ok)

	trace, _ := received["trace_id"].(string)
	assert.NotEmpty(t, trace)
	assert.Equal(t, trace, parseFailed["trace_id"])
}
