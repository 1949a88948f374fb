package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	apperrors "guard-tg-bot/internal/errors"
	"guard-tg-bot/internal/moderation"
	"guard-tg-bot/internal/session"
)

func (h *Handler) handleCallback(cb *tgbotapi.CallbackQuery) {
	cmd, err := ParseCallback(cb.Data)
	if err != nil {
		h.logger.Error("failed to parse callback", "error", err, "data", cb.Data)
		h.answerAlert(cb, apperrors.GetUserMessage(err))
		return
	}

	// Help, settings, and the plain back target are open to everyone;
	// everything else is operator-admin only.
	switch cmd.Kind {
	case CmdHelp, CmdSettings, CmdBack:
	default:
		if !h.pipeline.IsAdmin(cb.From.ID) {
			h.answerAlert(cb, apperrors.ErrUnauthorized.UserMsg)
			return
		}
	}

	switch cmd.Kind {
	case CmdGroupCount:
		h.showGroupCount(cb)

	case CmdGroupsList:
		if cb.Message != nil {
			h.sendGroupsCSV(cb.Message.Chat.ID)
		}
		h.answer(cb, "Guruhlar ro'yxati yuborildi!")

	case CmdStats:
		h.edit(cb, h.statsText(), backKeyboard("back_admin"))
		h.answer(cb, "")

	case CmdShowRestrictions:
		h.showRestrictions(cb, cmd.ChatID)

	case CmdShowWelcome:
		cfg := h.welcome.Get()
		h.edit(cb, welcomeText(cfg), welcomeKeyboard(cfg))
		h.answer(cb, "")

	case CmdToggleWelcome:
		enabled, err := h.welcome.ToggleEnabled()
		if err != nil {
			h.logger.Error("failed to toggle welcome", "error", err)
			h.answerAlert(cb, apperrors.GetUserMessage(err))
			return
		}
		h.answer(cb, fmt.Sprintf("Welcome %s qilindi!", statusMark(enabled)))
		cfg := h.welcome.Get()
		h.edit(cb, welcomeText(cfg), welcomeKeyboard(cfg))

	case CmdToggleMute:
		enabled, err := h.welcome.ToggleMute()
		if err != nil {
			h.logger.Error("failed to toggle mute", "error", err)
			h.answerAlert(cb, apperrors.GetUserMessage(err))
			return
		}
		h.answer(cb, fmt.Sprintf("Mute %s qilindi!", statusMark(enabled)))
		cfg := h.welcome.Get()
		h.edit(cb, welcomeText(cfg), welcomeKeyboard(cfg))

	case CmdEditWelcomeText:
		h.editText(cb, "Yangi welcome matnini yuboring (faqat matn):")
		h.startSession(cb, session.AwaitingWelcomeText)
		h.answer(cb, "")

	case CmdEditMuteDuration:
		h.editText(cb, "Yangi mute vaqtini sekundlarda kiriting (minimal 30 soniya, masalan, 300):")
		h.startSession(cb, session.AwaitingMuteDuration)
		h.answer(cb, "")

	case CmdSelectGroup:
		h.editText(cb, "Guruh ID sini kiriting:")
		h.startSession(cb, session.AwaitingGroupID)
		h.answer(cb, "")

	case CmdAllRestrictions:
		h.edit(cb,
			"Barcha guruhlar uchun taqiq sozlamalari (o'zgartirish barcha guruhlarga ta'sir qiladi):",
			allCategoryKeyboard())
		h.answer(cb, "")

	case CmdGroupTypeMenu:
		h.showGroupTypeMenu(cb, cmd)

	case CmdGroupSet:
		h.setGroupCategory(cb, cmd)

	case CmdAllTypeMenu:
		h.showAllTypeMenu(cb, cmd)

	case CmdAllSet:
		h.setAllGroups(cb, cmd)

	case CmdHelp:
		h.edit(cb,
			"Bot taqiqlangan so'zlar, audio va fayllarni guruhda tekshiradi.\n"+
				"Buyruqlar:\n/start - Boshlash\n/update_lists - Ro'yxatni yangilash\n"+
				"/admin - Admin panel\n/stats - Statistika\n/groups - Guruhlar ro'yxati",
			backKeyboard("back"))
		h.answer(cb, "")

	case CmdSettings:
		h.edit(cb, "Sozlamalar hozircha mavjud emas.", backKeyboard("back"))
		h.answer(cb, "")

	case CmdBack:
		if h.pipeline.IsAdmin(cb.From.ID) {
			h.edit(cb, "Admin panelga xush kelibsiz!", adminPanelKeyboard())
		} else {
			h.edit(cb, "Iltimos, meni guruhga qo'shib adminlik bering.", startKeyboard(h.bot.Self.UserName))
		}
		h.answer(cb, "")

	case CmdBackAdmin:
		h.edit(cb, "Admin panelga xush kelibsiz!", adminPanelKeyboard())
		h.answer(cb, "")
	}
}

// showGroupCount reports the total registered groups and how many of them
// have granted the bot admin rights.
func (h *Handler) showGroupCount(cb *tgbotapi.CallbackQuery) {
	groups, err := h.groups.All()
	if err != nil {
		h.logger.Error("failed to list groups", "error", err)
		h.answerAlert(cb, apperrors.GetUserMessage(err))
		return
	}

	adminGroups := 0
	for _, g := range groups {
		member, err := h.bot.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: g.ChatID,
				UserID: h.bot.Self.ID,
			},
		})
		if err != nil {
			h.logger.Error("failed to check group status", "error", err, "chat_id", g.ChatID)
			continue
		}
		if moderation.IsAdminStatus(member.Status) {
			adminGroups++
		}
	}

	h.edit(cb,
		fmt.Sprintf("Jami guruhlar: %d\nAdminlik berilgan guruhlar: %d", len(groups), adminGroups),
		backKeyboard("back_admin"))
	h.answer(cb, "Ma'lumot yangilandi!")
}

// showRestrictions opens the restriction surface: a scope menu from a
// private chat, the local group's category menu otherwise.
func (h *Handler) showRestrictions(cb *tgbotapi.CallbackQuery, backChatID int64) {
	if cb.Message == nil {
		h.answer(cb, "")
		return
	}

	if backChatID != 0 {
		// Back target from a group-context category menu.
		text := fmt.Sprintf("%s taqiq sozlamalari:", cb.Message.Chat.Title)
		h.edit(cb, text, groupCategoryKeyboard(backChatID, "back_admin"))
		h.answer(cb, "")
		return
	}

	if cb.Message.Chat.IsPrivate() {
		h.edit(cb, "Guruh taqiqlarini tanlang:", restrictionScopeKeyboard())
	} else {
		chatID := cb.Message.Chat.ID
		text := fmt.Sprintf("%s taqiq sozlamalari:", cb.Message.Chat.Title)
		h.edit(cb, text, groupCategoryKeyboard(chatID, "back_admin"))
	}
	h.answer(cb, "")
}

func (h *Handler) showGroupTypeMenu(cb *tgbotapi.CallbackQuery, cmd Command) {
	pol, err := h.policies.Get(cmd.ChatID)
	if err != nil {
		h.logger.Error("failed to load group policy", "error", err, "chat_id", cmd.ChatID)
		h.answerAlert(cb, apperrors.GetUserMessage(err))
		return
	}

	backChatID := int64(0)
	if cb.Message != nil && !cb.Message.Chat.IsPrivate() {
		backChatID = cmd.ChatID
	}

	text := fmt.Sprintf("%s sozlamalari. Joriy holat: %s",
		categoryLabel(cmd.Category), statusMark(pol.Allowed(cmd.Category)))
	h.edit(cb, text, groupToggleKeyboard(cmd.Category, cmd.ChatID, backChatID))
	h.answer(cb, "")
}

func (h *Handler) setGroupCategory(cb *tgbotapi.CallbackQuery, cmd Command) {
	if err := h.policies.Set(cmd.ChatID, cmd.Category, cmd.Value); err != nil {
		h.logger.Error("failed to set policy",
			"error", err, "chat_id", cmd.ChatID, "category", cmd.Category)
		h.answerAlert(cb, apperrors.GetUserMessage(err))
		return
	}

	text := fmt.Sprintf("%s %s qilindi.", cmd.Category, statusMark(cmd.Value))
	h.edit(cb, text, backKeyboard("show_group_restrictions"))
	h.answer(cb, "Sozlama o'zgartirildi!")
}

// showAllTypeMenu samples the first registered group for the current flag
// value, like the bulk menu always has.
func (h *Handler) showAllTypeMenu(cb *tgbotapi.CallbackQuery, cmd Command) {
	current := true
	groups, err := h.groups.All()
	if err != nil {
		h.logger.Error("failed to list groups", "error", err)
	} else if len(groups) > 0 {
		pol, err := h.policies.Get(groups[0].ChatID)
		if err != nil {
			h.logger.Error("failed to load sample policy", "error", err)
		} else {
			current = pol.Allowed(cmd.Category)
		}
	}

	text := fmt.Sprintf("%s sozlamalari. Joriy holat (namuna): %s",
		categoryLabel(cmd.Category), statusMark(current))
	h.edit(cb, text, allToggleKeyboard(cmd.Category))
	h.answer(cb, "")
}

// setAllGroups applies one category flag to every registered group.
// Best-effort: groups that fail are logged and the rest still update.
func (h *Handler) setAllGroups(cb *tgbotapi.CallbackQuery, cmd Command) {
	groups, err := h.groups.All()
	if err != nil {
		h.logger.Error("failed to list groups", "error", err)
		h.answerAlert(cb, apperrors.GetUserMessage(err))
		return
	}

	chatIDs := make([]int64, 0, len(groups))
	for _, g := range groups {
		chatIDs = append(chatIDs, g.ChatID)
	}
	if err := h.policies.SetAll(chatIDs, cmd.Category, cmd.Value); err != nil {
		h.logger.Error("failed to set policy for some groups",
			"error", err, "category", cmd.Category)
	}

	text := fmt.Sprintf("Barcha guruhlarda %s %s qilindi.", cmd.Category, statusMark(cmd.Value))
	h.edit(cb, text, backKeyboard("all_groups_restrictions"))
	h.answer(cb, "Sozlama o'zgartirildi!")
}

func (h *Handler) startSession(cb *tgbotapi.CallbackQuery, state session.State) {
	if cb.Message == nil {
		return
	}
	h.sessions.Set(cb.From.ID, cb.Message.Chat.ID, state)
}

func (h *Handler) edit(cb *tgbotapi.CallbackQuery, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if cb.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Message.Chat.ID, cb.Message.MessageID, text, kb)
	if _, err := h.bot.Send(edit); err != nil {
		h.logger.Error("failed to edit message", "error", err, "chat_id", cb.Message.Chat.ID)
	}
}

func (h *Handler) editText(cb *tgbotapi.CallbackQuery, text string) {
	if cb.Message == nil {
		return
	}
	edit := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	if _, err := h.bot.Send(edit); err != nil {
		h.logger.Error("failed to edit message", "error", err, "chat_id", cb.Message.Chat.ID)
	}
}

func (h *Handler) answer(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		h.logger.Error("failed to answer callback", "error", err)
	}
}

func (h *Handler) answerAlert(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallbackWithAlert(cb.ID, text)); err != nil {
		h.logger.Error("failed to answer callback", "error", err)
	}
}
