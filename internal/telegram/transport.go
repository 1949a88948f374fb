package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// APITransport implements moderation.Transport over the Bot API.
type APITransport struct {
	api *tgbotapi.BotAPI
}

// NewAPITransport wraps a Bot API client
func NewAPITransport(api *tgbotapi.BotAPI) *APITransport {
	return &APITransport{api: api}
}

// SendMessage sends a plain text message
func (t *APITransport) SendMessage(chatID int64, text string) error {
	_, err := t.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Reply sends a text message replying to an existing message
func (t *APITransport) Reply(chatID int64, messageID int, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = messageID
	_, err := t.api.Send(msg)
	return err
}

// DeleteMessage removes a message
func (t *APITransport) DeleteMessage(chatID int64, messageID int) error {
	_, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

// ForwardMessage forwards a message to another chat
func (t *APITransport) ForwardMessage(toChatID, fromChatID int64, messageID int) error {
	_, err := t.api.Send(tgbotapi.NewForward(toChatID, fromChatID, messageID))
	return err
}

// RestrictMember revokes a member's send permission until the given unix time
func (t *APITransport) RestrictMember(chatID, userID int64, untilUnix int64) error {
	cfg := tgbotapi.RestrictChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{
			ChatID: chatID,
			UserID: userID,
		},
		UntilDate: untilUnix,
		Permissions: &tgbotapi.ChatPermissions{
			CanSendMessages: false,
		},
	}
	_, err := t.api.Request(cfg)
	return err
}

// ChatMemberStatus returns a user's member status in a chat
func (t *APITransport) ChatMemberStatus(chatID, userID int64) (string, error) {
	member, err := t.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		return "", err
	}
	return member.Status, nil
}

// SelfID returns the bot's own user id
func (t *APITransport) SelfID() int64 {
	return t.api.Self.ID
}
