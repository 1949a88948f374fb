package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"guard-tg-bot/internal/moderation"
)

// toModerationMessage builds the transport-agnostic message the pipeline
// consumes. Content-kind detection mirrors the Bot API field precedence.
func toModerationMessage(msg *tgbotapi.Message) moderation.Message {
	m := moderation.Message{
		ChatID:       msg.Chat.ID,
		ChatTitle:    msg.Chat.Title,
		ChatUsername: msg.Chat.UserName,
		MessageID:    msg.MessageID,
		UnixTime:     int64(msg.Date),
		IsGroup:      msg.Chat.IsGroup() || msg.Chat.IsSuperGroup(),
	}
	if msg.From != nil {
		m.UserID = msg.From.ID
		m.Username = msg.From.UserName
	}

	switch {
	case msg.Text != "":
		m.Kind = moderation.KindText
		m.Text = msg.Text
		m.HasLink = hasURLEntity(msg)
	case len(msg.Photo) > 0:
		m.Kind = moderation.KindPhoto
	case msg.Video != nil:
		m.Kind = moderation.KindVideo
	case msg.Sticker != nil:
		m.Kind = moderation.KindSticker
	case msg.Voice != nil:
		m.Kind = moderation.KindVoice
	case msg.Audio != nil:
		m.Kind = moderation.KindAudio
		m.AudioTitle = msg.Audio.Title
	case msg.Document != nil:
		m.Kind = moderation.KindDocument
		m.DocumentName = msg.Document.FileName
	case msg.Poll != nil:
		m.Kind = moderation.KindPoll
	default:
		m.Kind = moderation.KindOther
	}
	return m
}

func hasURLEntity(msg *tgbotapi.Message) bool {
	for _, entity := range msg.Entities {
		if entity.Type == "url" {
			return true
		}
	}
	return false
}

// toJoinEvent builds a join event from a new_chat_members update.
func toJoinEvent(msg *tgbotapi.Message) moderation.JoinEvent {
	ev := moderation.JoinEvent{
		ChatID:    msg.Chat.ID,
		ChatTitle: msg.Chat.Title,
		MessageID: msg.MessageID,
		UnixTime:  int64(msg.Date),
		IsGroup:   msg.Chat.IsGroup() || msg.Chat.IsSuperGroup(),
	}
	for _, member := range msg.NewChatMembers {
		ev.MemberIDs = append(ev.MemberIDs, member.ID)
	}
	return ev
}
