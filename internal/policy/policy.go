package policy

// Category is a content-kind classification used to key per-group
// allow/deny decisions.
type Category string

const (
	CategoryText     Category = "text"
	CategoryPhoto    Category = "photo"
	CategoryVideo    Category = "video"
	CategorySticker  Category = "sticker"
	CategoryVoice    Category = "voice"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryLink     Category = "link"
	CategoryPoll     Category = "poll"
	CategoryFile     Category = "file"
)

// AllCategories lists every valid category in menu order.
var AllCategories = []Category{
	CategoryText,
	CategoryPhoto,
	CategoryVideo,
	CategorySticker,
	CategoryVoice,
	CategoryAudio,
	CategoryDocument,
	CategoryLink,
	CategoryPoll,
	CategoryFile,
}

// Valid reports whether c is a known category.
func Valid(c Category) bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// GroupPolicy holds per-group allow/deny flags for every category.
// A missing key means allowed.
type GroupPolicy struct {
	ChatID     int64
	Categories map[Category]bool
}

// Allowed reports whether the category is allowed in this group.
func (p *GroupPolicy) Allowed(c Category) bool {
	v, ok := p.Categories[c]
	if !ok {
		return true
	}
	return v
}

// defaultCategories returns a fresh all-allowed category map.
func defaultCategories() map[Category]bool {
	m := make(map[Category]bool, len(AllCategories))
	for _, c := range AllCategories {
		m[c] = true
	}
	return m
}

// Store defines the interface for group policy persistence
type Store interface {
	// Get retrieves the policy for a chat, creating and persisting
	// all-allowed defaults if none exist. Every category key is present
	// in the returned policy.
	Get(chatID int64) (*GroupPolicy, error)

	// Set updates a single category flag and persists immediately.
	// Unknown categories are a caller error.
	Set(chatID int64, category Category, value bool) error

	// SetAll applies one category flag to every listed chat. Best
	// effort: failed chats are skipped and reported together.
	SetAll(chatIDs []int64, category Category, value bool) error

	// Close releases resources
	Close() error
}
