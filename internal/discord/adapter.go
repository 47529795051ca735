// Package discord connects the bot engine to Discord through discordgo.
// It converts gateway messages into chat.Event values and implements the
// outbound side the engine and the broadcaster need.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/kalambet/slaymom/internal/chat"
)

// Intents the bot subscribes to. Message content is privileged and must
// be enabled for the application in the developer portal.
const Intents = discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentMessageContent |
	discordgo.IntentsGuildMembers

// Handler receives every inbound message.
type Handler interface {
	HandleMessage(ev chat.Event)
}

// Adapter is a connected Discord bot account.
type Adapter struct {
	session *discordgo.Session
	logger  *slog.Logger
	remove  func()
}

// New creates an adapter for the given bot token. No connection is made
// until Start.
func New(token string) (*Adapter, error) {
	if token == "" {
		return nil, errors.New("discord: empty bot token")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: creating session: %w", err)
	}
	s.Identify.Intents = Intents
	s.StateEnabled = true

	return &Adapter{session: s, logger: slog.Default()}, nil
}

// Start registers h and opens the gateway connection.
func (a *Adapter) Start(h Handler) error {
	a.remove = a.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil {
			return
		}
		h.HandleMessage(toEvent(s.State, m.Message))
	})
	a.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		a.logger.Info("connected to discord", "user", r.User.Username, "guilds", len(r.Guilds))
	})

	if err := a.session.Open(); err != nil {
		return fmt.Errorf("discord: opening gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (a *Adapter) Close() error {
	if a.remove != nil {
		a.remove()
	}
	return a.session.Close()
}

// Send posts r in channelID.
func (a *Adapter) Send(ctx context.Context, channelID string, r chat.Reply) error {
	_, err := a.session.ChannelMessageSendComplex(channelID, render(r), discordgo.WithContext(ctx))
	return mapError(err)
}

// SendDirect opens (or reuses) the DM channel with userID and posts r.
func (a *Adapter) SendDirect(ctx context.Context, userID string, r chat.Reply) error {
	ch, err := a.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return mapError(err)
	}
	return a.Send(ctx, ch.ID, r)
}

func (a *Adapter) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return mapError(a.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

// CreateThread starts a thread under channelID. Guilds with boost level 2
// or higher get a private thread; others get a public one.
func (a *Adapter) CreateThread(ctx context.Context, channelID string, opts chat.ThreadOptions) (string, error) {
	kind := discordgo.ChannelTypeGuildPublicThread
	if a.privateThreads(ctx, channelID) {
		kind = discordgo.ChannelTypeGuildPrivateThread
	}

	th, err := a.session.ThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                opts.Name,
		AutoArchiveDuration: archiveMinutes(opts.AutoArchive),
		Type:                kind,
		Invitable:           false,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", mapError(err)
	}
	return th.ID, nil
}

func (a *Adapter) privateThreads(ctx context.Context, channelID string) bool {
	ch, err := a.channel(ctx, channelID)
	if err != nil || ch.GuildID == "" {
		return false
	}
	g, err := a.session.State.Guild(ch.GuildID)
	if err != nil {
		g, err = a.session.Guild(ch.GuildID, discordgo.WithContext(ctx))
		if err != nil {
			return false
		}
	}
	return g.PremiumTier >= discordgo.PremiumTier2
}

func (a *Adapter) AddThreadMember(ctx context.Context, threadID, userID string) error {
	return mapError(a.session.ThreadMemberAdd(threadID, userID, discordgo.WithContext(ctx)))
}

// Member looks up a guild member.
func (a *Adapter) Member(ctx context.Context, guildID, userID string) (chat.Member, error) {
	m, err := a.session.State.Member(guildID, userID)
	if err != nil {
		m, err = a.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			return chat.Member{}, mapError(err)
		}
	}
	return toMember(m), nil
}

// HasPermission reports whether userID holds perm in channelID.
func (a *Adapter) HasPermission(ctx context.Context, channelID, userID string, perm chat.Permission) (bool, error) {
	bit, ok := permissionBits[perm]
	if !ok {
		return false, fmt.Errorf("discord: unknown permission %q", perm)
	}
	got, err := a.session.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return false, mapError(err)
	}
	return got&bit == bit || got&discordgo.PermissionAdministrator != 0, nil
}

// TimeoutMember communication-disables userID until the given time.
func (a *Adapter) TimeoutMember(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	return mapError(a.session.GuildMemberTimeout(guildID, userID, &until,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

// ResolveChannel checks that channelID exists and is visible to the bot.
func (a *Adapter) ResolveChannel(ctx context.Context, channelID string) error {
	_, err := a.channel(ctx, channelID)
	return err
}

func (a *Adapter) channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	if ch, err := a.session.State.Channel(channelID); err == nil {
		return ch, nil
	}
	ch, err := a.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, mapError(err)
	}
	return ch, nil
}

var permissionBits = map[chat.Permission]int64{
	chat.PermManageMessages:  discordgo.PermissionManageMessages,
	chat.PermModerateMembers: discordgo.PermissionModerateMembers,
}

// mapError translates REST failures the engine reacts to.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusForbidden:
			return fmt.Errorf("%w: %v", chat.ErrForbidden, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", chat.ErrNotFound, err)
		}
	}
	return err
}

// archiveMinutes rounds d to one of the durations Discord accepts.
func archiveMinutes(d time.Duration) int {
	m := int(d / time.Minute)
	for _, allowed := range []int{60, 1440, 4320, 10080} {
		if m <= allowed {
			return allowed
		}
	}
	return 10080
}
