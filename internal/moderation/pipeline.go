package moderation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"guard-tg-bot/internal/banlist"
	"guard-tg-bot/internal/eventlog"
	"guard-tg-bot/internal/policy"
)

// Action is the pipeline's decision for a message.
type Action int

const (
	Keep Action = iota
	Delete
)

// Verdict is the observable outcome of evaluating one message.
type Verdict struct {
	Action      Action
	Category    policy.Category
	FlaggedTerm string
}

// Pipeline evaluates inbound group messages against banned-term sets and
// per-group policy, emitting admin notifications and log entries as side
// effects. Detection and enforcement are decoupled: a flagged term always
// notifies and logs, deletion depends on the group's policy.
type Pipeline struct {
	transport Transport
	policies  policy.Store
	lists     *banlist.Lists
	events    eventlog.Store
	joins     *JoinTracker
	admins    map[int64]struct{}
	tz        *time.Location
	logger    *slog.Logger
}

// NewPipeline creates a moderation pipeline. Notification timestamps are
// rendered in Tashkent time, falling back to UTC+5 if tzdata is missing.
func NewPipeline(
	transport Transport,
	policies policy.Store,
	lists *banlist.Lists,
	events eventlog.Store,
	joins *JoinTracker,
	adminIDs []int64,
	logger *slog.Logger,
) *Pipeline {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	tz, err := time.LoadLocation("Asia/Tashkent")
	if err != nil {
		tz = time.FixedZone("+05", 5*3600)
	}

	return &Pipeline{
		transport: transport,
		policies:  policies,
		lists:     lists,
		events:    events,
		joins:     joins,
		admins:    admins,
		tz:        tz,
		logger:    logger,
	}
}

// IsAdmin reports whether a user is in the operator admin set.
func (p *Pipeline) IsAdmin(userID int64) bool {
	_, ok := p.admins[userID]
	return ok
}

// Evaluate classifies one message and enforces the group's policy.
// It only acts in groups where the bot holds admin rights; operator admins
// are exempt from every check.
func (p *Pipeline) Evaluate(msg Message) Verdict {
	v := Verdict{Action: Keep}

	if !msg.IsGroup {
		return v
	}

	status, err := p.transport.ChatMemberStatus(msg.ChatID, p.transport.SelfID())
	if err != nil {
		p.logger.Error("failed to check bot admin status", "error", err, "chat_id", msg.ChatID)
		return v
	}
	if !IsAdminStatus(status) {
		return v
	}

	if p.IsAdmin(msg.UserID) {
		return v
	}

	pol, err := p.policies.Get(msg.ChatID)
	if err != nil {
		p.logger.Error("failed to load group policy", "error", err, "chat_id", msg.ChatID)
		return v
	}

	sets := p.lists.Snapshot()

	switch msg.Kind {
	case KindText:
		v = p.evaluateText(msg, pol, sets)

	case KindPhoto:
		v.Category = policy.CategoryPhoto
		if !pol.Allowed(policy.CategoryPhoto) {
			v.Action = Delete
		}

	case KindVideo:
		v.Category = policy.CategoryVideo
		if !pol.Allowed(policy.CategoryVideo) {
			v.Action = Delete
		}

	case KindSticker:
		v.Category = policy.CategorySticker
		if !pol.Allowed(policy.CategorySticker) {
			v.Action = Delete
		}

	case KindVoice:
		v.Category = policy.CategoryVoice
		if !pol.Allowed(policy.CategoryVoice) {
			v.Action = Delete
		}

	case KindPoll:
		v.Category = policy.CategoryPoll
		if !pol.Allowed(policy.CategoryPoll) {
			v.Action = Delete
		}

	case KindAudio:
		v.Category = policy.CategoryAudio
		if !pol.Allowed(policy.CategoryAudio) {
			v.Action = Delete
		}
		if msg.AudioTitle != "" {
			tokens := strings.Fields(strings.ToLower(strings.TrimSpace(msg.AudioTitle)))
			if term, ok := sets.MatchAudioTitle(tokens); ok {
				// Title match notifies independently of the delete decision.
				v.FlaggedTerm = term
				p.flag(msg, policy.CategoryAudio, term, msg.AudioTitle, p.audioAlert(msg, term))
			}
		}

	case KindDocument:
		v.Category = policy.CategoryDocument
		name := msg.DocumentName
		if name == "" {
			name = "Noma'lum fayl"
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		tokens := strings.Fields(strings.ToLower(strings.TrimSpace(stem)))
		if term, ok := sets.MatchFileStem(tokens); ok {
			v.FlaggedTerm = term
			p.flag(msg, policy.CategoryDocument, term, name, p.fileAlert(msg, name, term))
			// Banned file names are always removed, whatever the policy says.
			v.Action = Delete
		} else if !pol.Allowed(policy.CategoryFile) {
			v.Action = Delete
		}

	default:
		// Unknown content kinds pass through without classification.
		return v
	}

	if v.Action == Delete {
		p.deleteMessage(msg, v.Category)
	}
	return v
}

// evaluateText runs the banned-word check and the link check. The two
// detections are independent; when both trigger, the word decision wins
// the observable action.
func (p *Pipeline) evaluateText(msg Message, pol *policy.GroupPolicy, sets *banlist.Sets) Verdict {
	v := Verdict{Action: Keep, Category: policy.CategoryText}

	tokens := strings.Fields(strings.ToLower(msg.Text))
	word, wordMatched := sets.MatchWord(tokens)
	if wordMatched {
		v.FlaggedTerm = word
		p.flag(msg, policy.CategoryText, word, msg.Text, p.wordAlert(msg, word))
		if !pol.Allowed(policy.CategoryText) {
			v.Action = Delete
		}
	}

	if msg.HasLink {
		p.flag(msg, policy.CategoryLink, "URL", msg.Text, p.linkAlert(msg))
		if v.Action == Keep {
			if !pol.Allowed(policy.CategoryLink) {
				v.Action = Delete
			}
			v.Category = policy.CategoryLink
		}
	} else if !wordMatched {
		if !pol.Allowed(policy.CategoryText) {
			v.Action = Delete
		}
	}

	return v
}

// flag records a detection: one log entry plus a summary and a forward to
// every operator admin. Per-recipient failures never stop the loop.
func (p *Pipeline) flag(msg Message, category policy.Category, term, details, alert string) {
	err := p.events.Append(eventlog.Entry{
		GroupID:    msg.ChatID,
		UserID:     msg.UserID,
		Category:   string(category),
		BannedItem: term,
		Details:    details,
	})
	if err != nil {
		p.logger.Error("failed to append log entry", "error", err, "category", category)
	}

	for adminID := range p.admins {
		if err := p.transport.SendMessage(adminID, alert); err != nil {
			p.logger.Error("failed to notify admin", "error", err, "admin_id", adminID)
			continue
		}
		if err := p.transport.ForwardMessage(adminID, msg.ChatID, msg.MessageID); err != nil {
			p.logger.Error("failed to forward message to admin", "error", err, "admin_id", adminID)
		}
	}
}

// deleteMessage enforces a Delete verdict. The in-chat notice is only sent
// for messages that arrived after the bot joined the chat.
func (p *Pipeline) deleteMessage(msg Message, category policy.Category) {
	if err := p.transport.DeleteMessage(msg.ChatID, msg.MessageID); err != nil {
		p.logger.Error("failed to delete message",
			"error", err, "chat_id", msg.ChatID, "category", category)
		return
	}
	p.logger.Info("message deleted", "chat_id", msg.ChatID, "category", category)

	if msg.UnixTime > p.joins.JoinedAt(msg.ChatID) {
		notice := fmt.Sprintf("%s yuborish taqiqlangan! Xabar o'chirildi.", capitalize(string(category)))
		if err := p.transport.Reply(msg.ChatID, msg.MessageID, notice); err != nil {
			p.logger.Error("failed to send delete notice", "error", err, "chat_id", msg.ChatID)
		}
	}
}

func (p *Pipeline) wordAlert(msg Message, word string) string {
	return fmt.Sprintf(
		"Guruhda taqiqlangan so'z aniqlandi!\nGuruh nomi: %s\nGuruh ID: %d\nGuruh username: %s\nFoydalanuvchi ID: %d\nUsername: %s\nSo'z: %s\nXabar: %s\nVaqt: %s",
		groupName(msg), msg.ChatID, atName(msg.ChatUsername),
		msg.UserID, atName(msg.Username), word, msg.Text, p.localTime(msg),
	)
}

func (p *Pipeline) linkAlert(msg Message) string {
	return fmt.Sprintf(
		"Guruhda taqiqlangan link aniqlandi!\nGuruh nomi: %s\nGuruh ID: %d\nGuruh username: %s\nFoydalanuvchi ID: %d\nUsername: %s\nXabar: %s\nVaqt: %s",
		groupName(msg), msg.ChatID, atName(msg.ChatUsername),
		msg.UserID, atName(msg.Username), msg.Text, p.localTime(msg),
	)
}

func (p *Pipeline) audioAlert(msg Message, term string) string {
	return fmt.Sprintf(
		"Guruhda taqiqlangan audio aniqlandi!\nGuruh nomi: %s\nGuruh ID: %d\nGuruh username: %s\nFoydalanuvchi ID: %d\nUsername: %s\nAudio: %s\nTaqiqlangan: %s\nVaqt: %s",
		groupName(msg), msg.ChatID, atName(msg.ChatUsername),
		msg.UserID, atName(msg.Username), msg.AudioTitle, term, p.localTime(msg),
	)
}

func (p *Pipeline) fileAlert(msg Message, fileName, term string) string {
	return fmt.Sprintf(
		"Guruhda taqiqlangan fayl aniqlandi!\nGuruh nomi: %s\nGuruh ID: %d\nGuruh username: %s\nFoydalanuvchi ID: %d\nUsername: %s\nFayl: %s\nTaqiqlangan: %s\nVaqt: %s",
		groupName(msg), msg.ChatID, atName(msg.ChatUsername),
		msg.UserID, atName(msg.Username), fileName, term, p.localTime(msg),
	)
}

func (p *Pipeline) localTime(msg Message) string {
	return time.Unix(msg.UnixTime, 0).In(p.tz).Format("2006-01-02 15:04:05 MST")
}

func groupName(msg Message) string {
	if msg.ChatTitle == "" {
		return "Noma'lum guruh"
	}
	return msg.ChatTitle
}

func atName(username string) string {
	if username == "" {
		return "N/A"
	}
	return "@" + username
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
