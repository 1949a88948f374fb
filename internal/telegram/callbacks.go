package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"guard-tg-bot/internal/policy"
)

// CommandKind tags a parsed callback command.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdGroupCount
	CmdGroupsList
	CmdStats
	CmdShowRestrictions
	CmdShowWelcome
	CmdHelp
	CmdSettings
	CmdBack
	CmdBackAdmin
	CmdToggleWelcome
	CmdToggleMute
	CmdEditWelcomeText
	CmdEditMuteDuration
	CmdSelectGroup
	CmdAllRestrictions
	CmdGroupTypeMenu
	CmdGroupSet
	CmdAllTypeMenu
	CmdAllSet
)

// Command is a callback payload parsed once at the boundary into a typed
// value; the handlers never touch the raw string again.
type Command struct {
	Kind     CommandKind
	Category policy.Category
	ChatID   int64
	Value    bool
}

var plainCommands = map[string]CommandKind{
	"group_count":             CmdGroupCount,
	"groups_list_cb":          CmdGroupsList,
	"stats_cb":                CmdStats,
	"show_group_restrictions": CmdShowRestrictions,
	"show_welcome_settings":   CmdShowWelcome,
	"help":                    CmdHelp,
	"settings":                CmdSettings,
	"back":                    CmdBack,
	"back_admin":              CmdBackAdmin,
	"toggle_welcome":          CmdToggleWelcome,
	"toggle_mute":             CmdToggleMute,
	"edit_welcome_msg":        CmdEditWelcomeText,
	"edit_mute_duration":      CmdEditMuteDuration,
	"select_single_group":     CmdSelectGroup,
	"all_groups_restrictions": CmdAllRestrictions,
}

// ParseCallback decodes a callback data string. The wire format is the
// action id, optionally followed by |-delimited category and chat id.
func ParseCallback(data string) (Command, error) {
	parts := strings.Split(data, "|")

	if kind, ok := plainCommands[parts[0]]; ok {
		switch {
		case len(parts) == 1:
			return Command{Kind: kind}, nil
		case kind == CmdShowRestrictions && len(parts) == 2:
			// Back target from a per-group menu carries the chat id,
			// 0 when the menu was opened from a private chat.
			chatID, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return Command{}, fmt.Errorf("callback %q: bad chat id: %w", data, err)
			}
			return Command{Kind: kind, ChatID: chatID}, nil
		}
		return Command{}, fmt.Errorf("callback %q: unexpected parameters", data)
	}

	switch parts[0] {
	case "group_type_menu":
		if len(parts) != 3 {
			return Command{}, fmt.Errorf("callback %q: want category and chat id", data)
		}
		return parseCategoryChat(CmdGroupTypeMenu, data, parts[1], parts[2], false)

	case "group_set_true", "group_set_false":
		if len(parts) != 3 {
			return Command{}, fmt.Errorf("callback %q: want category and chat id", data)
		}
		return parseCategoryChat(CmdGroupSet, data, parts[1], parts[2], parts[0] == "group_set_true")

	case "all_type_menu":
		if len(parts) != 2 {
			return Command{}, fmt.Errorf("callback %q: want category", data)
		}
		return parseCategory(CmdAllTypeMenu, data, parts[1], false)

	case "all_set_true", "all_set_false":
		if len(parts) != 2 {
			return Command{}, fmt.Errorf("callback %q: want category", data)
		}
		return parseCategory(CmdAllSet, data, parts[1], parts[0] == "all_set_true")
	}

	return Command{}, fmt.Errorf("unknown callback %q", data)
}

func parseCategory(kind CommandKind, data, category string, value bool) (Command, error) {
	c := policy.Category(category)
	if !policy.Valid(c) {
		return Command{}, fmt.Errorf("callback %q: unknown category %q", data, category)
	}
	return Command{Kind: kind, Category: c, Value: value}, nil
}

func parseCategoryChat(kind CommandKind, data, category, chat string, value bool) (Command, error) {
	cmd, err := parseCategory(kind, data, category, value)
	if err != nil {
		return Command{}, err
	}
	chatID, err := strconv.ParseInt(chat, 10, 64)
	if err != nil {
		return Command{}, fmt.Errorf("callback %q: bad chat id: %w", data, err)
	}
	cmd.ChatID = chatID
	return cmd, nil
}
