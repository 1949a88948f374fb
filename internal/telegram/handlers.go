package telegram

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"guard-tg-bot/internal/banlist"
	apperrors "guard-tg-bot/internal/errors"
	"guard-tg-bot/internal/eventlog"
	"guard-tg-bot/internal/moderation"
	"guard-tg-bot/internal/policy"
	"guard-tg-bot/internal/registry"
	"guard-tg-bot/internal/session"
	"guard-tg-bot/internal/welcome"
)

// Handler processes Telegram updates
type Handler struct {
	bot      *tgbotapi.BotAPI
	pipeline *moderation.Pipeline
	greeter  *moderation.Greeter
	policies policy.Store
	groups   registry.Store
	events   eventlog.Store
	lists    *banlist.Lists
	welcome  *welcome.Store
	sessions *session.Store
	logger   *slog.Logger
}

// NewHandler creates a new update handler
func NewHandler(
	bot *tgbotapi.BotAPI,
	pipeline *moderation.Pipeline,
	greeter *moderation.Greeter,
	policies policy.Store,
	groups registry.Store,
	events eventlog.Store,
	lists *banlist.Lists,
	welcomeStore *welcome.Store,
	sessions *session.Store,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		bot:      bot,
		pipeline: pipeline,
		greeter:  greeter,
		policies: policies,
		groups:   groups,
		events:   events,
		lists:    lists,
		welcome:  welcomeStore,
		sessions: sessions,
		logger:   logger,
	}
}

// HandleUpdate processes a single update
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	// Scope the handler to a per-update logger so every line written
	// while processing this update carries the trace id.
	u := h.withTrace(uuid.NewString())
	u.logger.Debug("update received", "update_id", update.UpdateID)

	if update.CallbackQuery != nil {
		u.handleCallback(update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	msg := update.Message

	if len(msg.NewChatMembers) > 0 {
		u.greeter.HandleJoin(toJoinEvent(msg))
		return
	}

	if msg.IsCommand() {
		u.handleCommand(msg)
		return
	}

	if msg.From != nil {
		if state := u.sessions.Get(msg.From.ID, msg.Chat.ID); state != session.Idle {
			u.handleSessionInput(msg, state)
			return
		}
	}

	u.pipeline.Evaluate(toModerationMessage(msg))
}

// withTrace returns a copy of the handler bound to a per-update logger.
// Handler holds only collaborators, so the shallow copy is safe.
func (h *Handler) withTrace(traceID string) *Handler {
	scoped := *h
	scoped.logger = h.logger.With("trace_id", traceID)
	return &scoped
}

func (h *Handler) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.handleStart(msg)
	case "admin":
		if !h.requireAdmin(msg) {
			return
		}
		h.replyWithKeyboard(msg, "Admin panelga xush kelibsiz!", adminPanelKeyboard())
	case "stats":
		if !h.requireAdmin(msg) {
			return
		}
		h.reply(msg, h.statsText())
	case "update_lists":
		if !h.requireAdmin(msg) {
			return
		}
		counts := h.lists.Reload()
		h.reply(msg, fmt.Sprintf(
			"Taqiqlangan ro'yxatlar yangilandi!\nSo'zlar: %d ta\nAudio: %d ta\nFayllar: %d ta",
			counts.Words, counts.AudioTitles, counts.FileStems))
	case "groups":
		if !h.requireAdmin(msg) {
			return
		}
		h.sendGroupsCSV(msg.Chat.ID)
	default:
		// Unrecognized commands are ordinary text to the moderation
		// rules; a leading slash must not bypass the banned-term scan.
		h.pipeline.Evaluate(toModerationMessage(msg))
	}
}

func (h *Handler) handleStart(msg *tgbotapi.Message) {
	if msg.From != nil && h.pipeline.IsAdmin(msg.From.ID) {
		h.replyWithKeyboard(msg, "Admin panelga xush kelibsiz!", adminPanelKeyboard())
		return
	}

	if msg.Chat.IsPrivate() {
		h.replyWithKeyboard(msg,
			"Iltimos, meni guruhga qo'shib adminlik bering.",
			startKeyboard(h.bot.Self.UserName))
		return
	}

	if msg.Chat.IsGroup() || msg.Chat.IsSuperGroup() {
		member, err := h.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: msg.Chat.ID,
				UserID: h.bot.Self.ID,
			},
		})
		if err != nil {
			h.logger.Error("failed to check bot status", "error", err, "chat_id", msg.Chat.ID)
			h.reply(msg, apperrors.GetUserMessage(err))
			return
		}
		if moderation.IsAdminStatus(member.Status) {
			h.reply(msg, "Ushbu bot ish faoliyatida!")
		} else {
			h.reply(msg, "Iltimos, meni guruhda admin qiling!")
		}
	}
}

// handleSessionInput consumes free text while an admin console flow is
// waiting for it. Every branch clears the session; a new menu entry is
// required after a rejection.
func (h *Handler) handleSessionInput(msg *tgbotapi.Message, state session.State) {
	userID := msg.From.ID
	defer h.sessions.Clear(userID, msg.Chat.ID)

	if !h.pipeline.IsAdmin(userID) {
		h.reply(msg, apperrors.ErrUnauthorized.UserMsg)
		return
	}

	switch state {
	case session.AwaitingWelcomeText:
		if err := h.welcome.SetMessage(msg.Text); err != nil {
			h.logger.Error("failed to update welcome message", "error", err)
			h.reply(msg, apperrors.GetUserMessage(err))
			return
		}
		h.reply(msg, fmt.Sprintf("Welcome matni yangilandi: %s", msg.Text))
		h.showWelcomeSettings(msg)

	case session.AwaitingMuteDuration:
		seconds, err := strconv.Atoi(strings.TrimSpace(msg.Text))
		if err != nil {
			h.reply(msg, apperrors.ErrNotANumber.UserMsg)
			return
		}
		if err := h.welcome.SetMuteDuration(seconds); err != nil {
			h.logger.Error("failed to update mute duration", "error", err)
			h.reply(msg, apperrors.GetUserMessage(err))
			return
		}
		h.reply(msg, fmt.Sprintf("Mute vaqti yangilandi: %d sekund", seconds))
		h.showWelcomeSettings(msg)

	case session.AwaitingGroupID:
		chatID, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
		if err != nil {
			h.reply(msg, "Iltimos, to'g'ri guruh ID kiriting!")
			return
		}
		group, err := h.groups.ByChatID(chatID)
		if err != nil {
			h.logger.Error("failed to look up group", "error", err, "chat_id", chatID)
			h.reply(msg, apperrors.GetUserMessage(err))
			return
		}
		if group == nil {
			h.reply(msg, apperrors.ErrUnknownGroup.UserMsg)
			return
		}
		text := fmt.Sprintf("%s (%d) taqiq sozlamalari:", group.Name, group.ChatID)
		h.replyWithKeyboard(msg, text, groupCategoryKeyboard(group.ChatID, "show_group_restrictions"))
	}
}

func (h *Handler) showWelcomeSettings(msg *tgbotapi.Message) {
	cfg := h.welcome.Get()
	h.replyWithKeyboard(msg, welcomeText(cfg), welcomeKeyboard(cfg))
}

// statsText summarizes the last 24 hours of moderation events.
func (h *Handler) statsText() string {
	since := time.Now().Add(-24 * time.Hour)

	total, err := h.events.CountSince(since)
	if err != nil {
		h.logger.Error("failed to count log entries", "error", err)
		return apperrors.GetUserMessage(err)
	}
	byCategory, err := h.events.CountByCategorySince(since)
	if err != nil {
		h.logger.Error("failed to count by category", "error", err)
		return apperrors.GetUserMessage(err)
	}
	top, err := h.events.TopBannedSince(since, 5)
	if err != nil {
		h.logger.Error("failed to query top banned items", "error", err)
		return apperrors.GetUserMessage(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Statistika (oxirgi 24 soat):\nJami taqiqlangan: %d\n\nTurlarga ko'ra:\n", total)
	for _, c := range byCategory {
		fmt.Fprintf(&b, "%s: %d\n", capitalize(c.Category), c.Count)
	}
	b.WriteString("\nEng ko'p taqiqlanganlar:\n")
	for _, item := range top {
		fmt.Fprintf(&b, "%s: %d\n", item.Item, item.Count)
	}
	return b.String()
}

// sendGroupsCSV exports the group catalog as a CSV document.
func (h *Handler) sendGroupsCSV(chatID int64) {
	groups, err := h.groups.All()
	if err != nil {
		h.logger.Error("failed to list groups", "error", err)
		h.sendText(chatID, apperrors.GetUserMessage(err))
		return
	}
	if len(groups) == 0 {
		h.sendText(chatID, "Hozircha guruhlar yo'q.")
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Tartib raqami", "Guruh nomi", "Guruh ID si"})
	for _, g := range groups {
		w.Write([]string{
			strconv.FormatInt(g.ID, 10),
			g.Name,
			strconv.FormatInt(g.ChatID, 10),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.logger.Error("failed to build groups csv", "error", err)
		h.sendText(chatID, apperrors.GetUserMessage(err))
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  "guruhlar.csv",
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Jami %d ta guruh ma'lumotlari fayl sifatida yuborildi.", len(groups))
	if _, err := h.bot.Send(doc); err != nil {
		h.logger.Error("failed to send groups csv", "error", err, "chat_id", chatID)
	}
}

func (h *Handler) requireAdmin(msg *tgbotapi.Message) bool {
	if msg.From != nil && h.pipeline.IsAdmin(msg.From.ID) {
		return true
	}
	h.reply(msg, apperrors.ErrUnauthorized.UserMsg)
	return false
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := h.bot.Send(out); err != nil {
		h.logger.Error("failed to send reply", "error", err, "chat_id", msg.Chat.ID)
	}
}

func (h *Handler) replyWithKeyboard(msg *tgbotapi.Message, text string, kb tgbotapi.InlineKeyboardMarkup) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	out.ReplyMarkup = kb
	if _, err := h.bot.Send(out); err != nil {
		h.logger.Error("failed to send reply", "error", err, "chat_id", msg.Chat.ID)
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.logger.Error("failed to send message", "error", err, "chat_id", chatID)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
