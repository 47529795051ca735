// Package chat holds the platform-neutral values that cross the boundary
// between the bot engine and a chat platform adapter.
package chat

import (
	"errors"
	"strings"
	"time"
)

// Delivery errors reported by platform adapters. Adapters wrap the
// underlying platform error so callers can match with errors.Is.
var (
	// ErrForbidden means the platform refused the action, typically
	// because the bot lacks a permission or the user blocks DMs.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the channel, user or message does not exist
	// or is not visible to the bot.
	ErrNotFound = errors.New("not found")
)

// Event is one inbound message.
type Event struct {
	ID         string
	AuthorID   string
	AuthorName string
	Bot        bool // authored by an automated account
	ChannelID  string
	GuildID    string // empty for direct messages
	GuildName  string
	Content    string
	Received   time.Time
}

// Direct reports whether the event arrived in a direct-message channel.
func (e Event) Direct() bool { return e.GuildID == "" }

// Mention returns the platform mention markup for the author.
func (e Event) Mention() string { return Mention(e.AuthorID) }

// Mention returns the platform mention markup for a user ID.
func Mention(userID string) string { return "<@" + userID + ">" }

// Member is a guild member as seen by the bot.
type Member struct {
	ID          string
	DisplayName string
}

// ParseMention extracts a user ID from mention markup ("<@123>" or
// "<@!123>") or a bare numeric ID.
func ParseMention(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(s[2:len(s)-1], "!")
	}
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}

// Reply is one outbound message. Either field may be empty but not both.
type Reply struct {
	Text  string
	Embed *Embed
}

// Text returns a plain-text reply.
func Text(s string) Reply { return Reply{Text: s} }

// Embed is a card-style message body.
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
}

// Field is one titled section of an Embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}

// Card returns an embed reply.
func Card(e Embed) Reply { return Reply{Embed: &e} }

// Permission names a moderation capability checked before privileged
// commands run.
type Permission int

const (
	PermManageMessages Permission = iota + 1
	PermModerateMembers
)

func (p Permission) String() string {
	switch p {
	case PermManageMessages:
		return "manage_messages"
	case PermModerateMembers:
		return "moderate_members"
	default:
		return "unknown"
	}
}

// ThreadOptions parameterizes thread creation.
type ThreadOptions struct {
	Name        string
	AutoArchive time.Duration
}

// Palette used by the bot's cards.
const (
	ColorPink       = 0xFF69B4
	ColorDeepPink   = 0xFF1493
	ColorMagenta    = 0xE91E63
	ColorPurple     = 0xBA55D3
	ColorSoftPurple = 0x9370DB
	ColorGreen      = 0x2ECC71
	ColorBlue       = 0x3498DB
	ColorRed        = 0xE74C3C
	ColorOrange     = 0xE67E22
	ColorGold       = 0xF1C40F
)
