package eventlog

import "time"

// Entry is one moderation action record. Entries are append-only and
// never mutated or deleted.
type Entry struct {
	ID         int64
	Timestamp  time.Time
	GroupID    int64
	UserID     int64
	Category   string
	BannedItem string
	Details    string
}

// CategoryCount is a per-category tally used by the stats surface.
type CategoryCount struct {
	Category string
	Count    int64
}

// ItemCount is a per-banned-item tally used by the stats surface.
type ItemCount struct {
	Item  string
	Count int64
}

// Store defines the interface for the moderation event log
type Store interface {
	// Append records a moderation event. Timestamp is assigned by the
	// store if zero.
	Append(e Entry) error

	// CountSince returns the number of entries newer than t.
	CountSince(t time.Time) (int64, error)

	// CountByCategorySince returns per-category tallies newer than t.
	CountByCategorySince(t time.Time) ([]CategoryCount, error)

	// TopBannedSince returns the most frequent banned items newer than t.
	TopBannedSince(t time.Time, limit int) ([]ItemCount, error)

	// Close releases resources
	Close() error
}
