package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"guard-tg-bot/internal/policy"
	"guard-tg-bot/internal/welcome"
)

// categoryLabels maps categories to their Uzbek menu labels. The file
// category has no menu row of its own; it is the fallback policy for
// documents with clean names.
var categoryLabels = map[policy.Category]string{
	policy.CategoryText:     "Xabar yuborish",
	policy.CategoryPhoto:    "Rasm yuborish",
	policy.CategoryVideo:    "Video yuborish",
	policy.CategorySticker:  "Stiker yuborish",
	policy.CategoryVoice:    "Ovozli xabar yuborish",
	policy.CategoryAudio:    "Musiqa yuborish",
	policy.CategoryDocument: "Fayl yuborish",
	policy.CategoryLink:     "Link havola yuborish",
	policy.CategoryPoll:     "So'rovnoma yuborish",
}

// menuCategories is the row order of the category menus.
var menuCategories = []policy.Category{
	policy.CategoryText,
	policy.CategoryPhoto,
	policy.CategoryVideo,
	policy.CategorySticker,
	policy.CategoryVoice,
	policy.CategoryAudio,
	policy.CategoryDocument,
	policy.CategoryLink,
	policy.CategoryPoll,
}

func categoryLabel(c policy.Category) string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

func statusMark(enabled bool) string {
	if enabled {
		return "✅"
	}
	return "❌"
}

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func adminPanelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("Guruhlar soni", "group_count")),
		tgbotapi.NewInlineKeyboardRow(button("Guruhlar ro'yxati", "groups_list_cb")),
		tgbotapi.NewInlineKeyboardRow(button("Statistika", "stats_cb")),
		tgbotapi.NewInlineKeyboardRow(button("Guruhdagi ta'qiqlar", "show_group_restrictions")),
		tgbotapi.NewInlineKeyboardRow(button("Welcome sozlamalari", "show_welcome_settings")),
	)
}

func startKeyboard(botUsername string) tgbotapi.InlineKeyboardMarkup {
	addURL := fmt.Sprintf("https://t.me/%s?startgroup=true", botUsername)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("Guruhga qo'shish", addURL)),
		tgbotapi.NewInlineKeyboardRow(button("Yordam", "help")),
		tgbotapi.NewInlineKeyboardRow(button("Sozlamalar", "settings")),
	)
}

func backKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("Orqaga", data)),
	)
}

func welcomeKeyboard(cfg welcome.Config) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(fmt.Sprintf("Welcome yoqish/o'chirish %s", statusMark(cfg.Enabled)), "toggle_welcome")),
		tgbotapi.NewInlineKeyboardRow(
			button(fmt.Sprintf("Yangi a'zolar mute %s", statusMark(cfg.MuteEnabled)), "toggle_mute")),
		tgbotapi.NewInlineKeyboardRow(button("Matn o'zgartirish", "edit_welcome_msg")),
		tgbotapi.NewInlineKeyboardRow(button("Mute vaqti o'zgartirish", "edit_mute_duration")),
		tgbotapi.NewInlineKeyboardRow(button("Orqaga", "back_admin")),
	)
}

func welcomeText(cfg welcome.Config) string {
	return fmt.Sprintf(
		"Welcome sozlamalari:\nEnabled: %s\nMute: %s\nMatn: %.50s...\nMute vaqti: %d sekund",
		statusMark(cfg.Enabled), statusMark(cfg.MuteEnabled), cfg.Message, cfg.MuteDurationSeconds,
	)
}

func restrictionScopeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(button("Barcha guruhlar uchun", "all_groups_restrictions")),
		tgbotapi.NewInlineKeyboardRow(button("Bitta guruh uchun", "select_single_group")),
		tgbotapi.NewInlineKeyboardRow(button("Orqaga", "back_admin")),
	)
}

// groupCategoryKeyboard renders the per-group category menu. backData is
// where the bottom row returns to.
func groupCategoryKeyboard(chatID int64, backData string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range menuCategories {
		data := fmt.Sprintf("group_type_menu|%s|%d", c, chatID)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(categoryLabel(c), data)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Orqaga", backData)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func allCategoryKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range menuCategories {
		data := fmt.Sprintf("all_type_menu|%s", c)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(button(categoryLabel(c), data)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(button("Orqaga", "back_admin")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// groupToggleKeyboard renders the allow/deny choice for one category in
// one group.
func groupToggleKeyboard(c policy.Category, chatID int64, backChatID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("Ruxsat berish (True)", fmt.Sprintf("group_set_true|%s|%d", c, chatID))),
		tgbotapi.NewInlineKeyboardRow(
			button("Taqiqlash (False)", fmt.Sprintf("group_set_false|%s|%d", c, chatID))),
		tgbotapi.NewInlineKeyboardRow(
			button("Orqaga", fmt.Sprintf("show_group_restrictions|%d", backChatID))),
	)
}

func allToggleKeyboard(c policy.Category) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("Ruxsat berish (True)", fmt.Sprintf("all_set_true|%s", c))),
		tgbotapi.NewInlineKeyboardRow(
			button("Taqiqlash (False)", fmt.Sprintf("all_set_false|%s", c))),
		tgbotapi.NewInlineKeyboardRow(button("Orqaga", "all_groups_restrictions")),
	)
}
