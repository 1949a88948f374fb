package moderation

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"guard-tg-bot/internal/policy"
	"guard-tg-bot/internal/registry"
	"guard-tg-bot/internal/welcome"
)

// JoinTracker remembers when the bot joined each chat, in memory only.
// Messages older than the join time skip the in-chat delete notice.
type JoinTracker struct {
	mu     sync.RWMutex
	joined map[int64]int64
}

// NewJoinTracker creates an empty tracker
func NewJoinTracker() *JoinTracker {
	return &JoinTracker{joined: make(map[int64]int64)}
}

// Record stores the bot's join time for a chat.
func (t *JoinTracker) Record(chatID, unixTime int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.joined[chatID] = unixTime
}

// JoinedAt returns the recorded join time, 0 if unknown.
func (t *JoinTracker) JoinedAt(chatID int64) int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.joined[chatID]
}

// JoinEvent is one new-member update from a chat.
type JoinEvent struct {
	ChatID    int64
	ChatTitle string
	MessageID int
	UnixTime  int64
	IsGroup   bool
	MemberIDs []int64
}

// Greeter handles new-member events: registers the bot's own joins and
// welcomes/restricts everyone else.
type Greeter struct {
	transport Transport
	groups    registry.Store
	policies  policy.Store
	welcome   *welcome.Store
	joins     *JoinTracker
	logger    *slog.Logger
	now       func() time.Time
}

// NewGreeter creates a join/mute automation handler
func NewGreeter(
	transport Transport,
	groups registry.Store,
	policies policy.Store,
	welcomeStore *welcome.Store,
	joins *JoinTracker,
	logger *slog.Logger,
) *Greeter {
	return &Greeter{
		transport: transport,
		groups:    groups,
		policies:  policies,
		welcome:   welcomeStore,
		joins:     joins,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleJoin processes one new-member event.
func (g *Greeter) HandleJoin(ev JoinEvent) {
	if !ev.IsGroup {
		return
	}

	selfID := g.transport.SelfID()
	botJoined := false
	hasOthers := false
	for _, id := range ev.MemberIDs {
		if id == selfID {
			botJoined = true
		} else {
			hasOthers = true
		}
	}

	if botJoined {
		g.registerSelf(ev)
	}

	if !hasOthers {
		return
	}

	status, err := g.transport.ChatMemberStatus(ev.ChatID, selfID)
	if err != nil {
		g.logger.Error("failed to check bot admin status", "error", err, "chat_id", ev.ChatID)
		return
	}
	if !IsAdminStatus(status) {
		return
	}

	cfg := g.welcome.Get()

	if cfg.Enabled {
		if err := g.transport.Reply(ev.ChatID, ev.MessageID, cfg.Message); err != nil {
			g.logger.Error("failed to send welcome message", "error", err, "chat_id", ev.ChatID)
		}
	}

	if cfg.MuteEnabled {
		until := g.now().Unix() + int64(cfg.MuteDurationSeconds)
		for _, id := range ev.MemberIDs {
			if id == selfID {
				continue
			}
			if err := g.transport.RestrictMember(ev.ChatID, id, until); err != nil {
				g.logger.Error("failed to restrict new member",
					"error", err, "chat_id", ev.ChatID, "user_id", id)
				continue
			}
			g.logger.Info("new member muted",
				"chat_id", ev.ChatID, "user_id", id, "until", until)
		}
	}
}

// registerSelf records the bot's own join: catalog entry, join time, and
// the ordinal reply. Duplicate joins are a no-op on the catalog.
func (g *Greeter) registerSelf(ev JoinEvent) {
	// Record the join time first so the after-join heuristic holds for
	// every message that follows this event.
	g.joins.Record(ev.ChatID, ev.UnixTime)

	name := ev.ChatTitle
	if name == "" {
		name = "Noma'lum guruh"
	}

	ordinal, created, err := g.groups.Add(name, ev.ChatID)
	if err != nil {
		g.logger.Error("failed to register group", "error", err, "chat_id", ev.ChatID)
		return
	}

	// Make sure the group starts with a full default policy.
	if _, err := g.policies.Get(ev.ChatID); err != nil {
		g.logger.Error("failed to create default policy", "error", err, "chat_id", ev.ChatID)
	}

	var reply string
	if created {
		reply = fmt.Sprintf("Men guruhga qo'shildim! Guruh tartib raqami: %d", ordinal)
	} else {
		reply = "Men allaqachon ushbu guruhda!"
	}
	if err := g.transport.Reply(ev.ChatID, ev.MessageID, reply); err != nil {
		g.logger.Error("failed to send join reply", "error", err, "chat_id", ev.ChatID)
	}
}
