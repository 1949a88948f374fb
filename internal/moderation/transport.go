package moderation

// Chat member statuses that count as administrative.
const (
	StatusAdministrator = "administrator"
	StatusCreator       = "creator"
)

// Transport is the messaging-platform surface the moderation core needs.
// Every call is a single best-effort attempt; callers log failures and
// move on.
type Transport interface {
	// SendMessage sends a plain text message to a chat.
	SendMessage(chatID int64, text string) error

	// Reply sends a text message replying to an existing message.
	Reply(chatID int64, messageID int, text string) error

	// DeleteMessage removes a message from a chat.
	DeleteMessage(chatID int64, messageID int) error

	// ForwardMessage forwards a message to another chat.
	ForwardMessage(toChatID, fromChatID int64, messageID int) error

	// RestrictMember revokes a member's send permission until the given
	// unix time.
	RestrictMember(chatID, userID int64, untilUnix int64) error

	// ChatMemberStatus returns the member status string for a user in a
	// chat.
	ChatMemberStatus(chatID, userID int64) (string, error)

	// SelfID returns the bot's own user id.
	SelfID() int64
}

// IsAdminStatus reports whether a member status grants admin rights.
func IsAdminStatus(status string) bool {
	return status == StatusAdministrator || status == StatusCreator
}
