package registry

// Group is a chat the bot has joined. The ordinal ID is assigned by the
// store at insertion and never reused.
type Group struct {
	ID     int64
	Name   string
	ChatID int64
}

// Store defines the interface for the group catalog. Groups are
// insert-once per chat id and never deleted.
type Store interface {
	// Add registers a group. If the chat id is already known the existing
	// ordinal is returned with created=false and nothing is written.
	Add(name string, chatID int64) (ordinal int64, created bool, err error)

	// ByChatID looks up a group by its chat id. Returns nil if unknown.
	ByChatID(chatID int64) (*Group, error)

	// All returns every registered group ordered by ordinal.
	All() ([]Group, error)

	// Close releases resources
	Close() error
}
