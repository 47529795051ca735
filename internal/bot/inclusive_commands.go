package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kalambet/slaymom/internal/chat"
	"github.com/kalambet/slaymom/internal/storage"
)

const (
	resourcesPreview = 3
	// Longest timeout the platform accepts, in minutes.
	maxMuteMinutes = 28 * 24 * 60
)

func (s *Service) cmdResources(_ context.Context, req *request) error {
	dir := s.content.Resources()
	if len(dir) == 0 {
		s.reply(req, chat.Text(msgNoResources))
		return nil
	}

	footer := "Remember that you're not alone. There's a whole community here for you! 🌈"
	name, _ := nextArg(req.args)

	if cat, ok := dir.Lookup(name); ok && name != "" {
		fields := make([]chat.Field, 0, len(cat.Resources))
		for _, r := range cat.Resources {
			fields = append(fields, chat.Field{
				Name:  r.Name,
				Value: fmt.Sprintf("[%s](%s)", r.Description, r.URL),
			})
		}
		s.reply(req, chat.Card(chat.Embed{
			Title:       fmt.Sprintf("LGBTQIA+ %s Resources", capitalize(cat.Name)),
			Description: fmt.Sprintf("Here are some helpful %s resources:", cat.Name),
			Color:       chat.ColorDeepPink,
			Fields:      fields,
			Footer:      footer,
		}))
		return nil
	}

	fields := make([]chat.Field, 0, len(dir))
	for _, cat := range dir {
		var b strings.Builder
		for i, r := range cat.Resources {
			if i == resourcesPreview {
				break
			}
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "• [%s](%s)", r.Name, r.URL)
		}
		if extra := len(cat.Resources) - resourcesPreview; extra > 0 {
			fmt.Fprintf(&b, "\n• *...and %d more*", extra)
		}
		fmt.Fprintf(&b, "\n\nUse `%sresources %s` for more details.", s.cfg.Prefix, cat.Name)
		fields = append(fields, chat.Field{Name: capitalize(cat.Name), Value: b.String()})
	}
	s.reply(req, chat.Card(chat.Embed{
		Title:       "LGBTQIA+ Resources",
		Description: "Here are resources that might help you:",
		Color:       chat.ColorDeepPink,
		Fields:      fields,
		Footer:      footer,
	}))
	return nil
}

// cmdTriggerWarning removes the original message and reposts its body
// behind a spoiler under a warning header.
func (s *Service) cmdTriggerWarning(ctx context.Context, req *request) error {
	if err := s.platform.DeleteMessage(ctx, req.ev.ChannelID, req.ev.ID); err != nil {
		s.logger.Debug("deleting tw message failed", "channel_id", req.ev.ChannelID, "error", err)
	}

	topic, message := nextArg(req.args)
	message = unquote(message)
	if topic == "" || message == "" {
		return usagef("Please provide both a topic and a message. Usage: `%stw topic Your message here`", s.cfg.Prefix)
	}

	s.reply(req, chat.Card(chat.Embed{
		Title:       "⚠️ Trigger Warning: " + topic,
		Description: "The following message may contain content that could be triggering.",
		Color:       chat.ColorGold,
		Fields:      []chat.Field{{Name: "Message Content (click to reveal)", Value: "||" + message + "||"}},
		Footer:      "Posted by " + req.ev.AuthorName,
	}))
	return nil
}

func (s *Service) cmdPride(_ context.Context, req *request) error {
	arg, _ := nextArg(req.args)

	flag := prideFlags[0]
	found := false
	for _, f := range prideFlags {
		if strings.EqualFold(f.name, arg) {
			flag, found = f, true
			break
		}
	}
	if arg != "" && !found {
		names := make([]string, len(prideFlags))
		for i, f := range prideFlags {
			names[i] = f.name
		}
		s.reply(req, chat.Text("I don't have that flag yet, so I'll use the rainbow flag instead! Available flags: "+strings.Join(names, ", ")))
	}

	s.reply(req, chat.Card(chat.Embed{
		Title:       "🌈 Pride and Love! 🌈",
		Description: flag.message,
		Color:       flag.colors[0],
		Footer:      fmt.Sprintf("Showing %s pride flag colors. Remember: You are loved exactly as you are! 💖", flag.name),
	}))
	return nil
}

// moderationTarget checks the author's permission and resolves the
// mentioned member. A false return means a reply has already been sent.
func (s *Service) moderationTarget(ctx context.Context, req *request, perm chat.Permission, denied string) (chat.Member, string, bool, error) {
	if req.ev.Direct() {
		s.reply(req, chat.Text(msgGuildOnly))
		return chat.Member{}, "", false, nil
	}

	allowed, err := s.platform.HasPermission(ctx, req.ev.ChannelID, req.ev.AuthorID, perm)
	if err != nil {
		return chat.Member{}, "", false, fmt.Errorf("checking %s permission: %w", perm, err)
	}
	if !allowed {
		s.reply(req, chat.Text(denied))
		return chat.Member{}, "", false, nil
	}

	ref, rest := nextArg(req.args)
	id, ok := chat.ParseMention(ref)
	if !ok {
		s.reply(req, chat.Text(msgMemberNotFound))
		return chat.Member{}, "", false, nil
	}
	m, err := s.platform.Member(ctx, req.ev.GuildID, id)
	if errors.Is(err, chat.ErrNotFound) {
		s.reply(req, chat.Text(msgMemberNotFound))
		return chat.Member{}, "", false, nil
	}
	if err != nil {
		return chat.Member{}, "", false, fmt.Errorf("looking up member: %w", err)
	}
	return m, rest, true, nil
}

func (s *Service) cmdWarn(ctx context.Context, req *request) error {
	member, rest, ok, err := s.moderationTarget(ctx, req, chat.PermManageMessages, msgWarnNoPerm)
	if err != nil || !ok {
		return err
	}

	reason := strings.TrimSpace(rest)
	if reason == "" {
		reason = noReason
	}

	w := storage.Warning{
		ID:          uuid.NewString(),
		GuildID:     req.ev.GuildID,
		UserID:      member.ID,
		ModeratorID: req.ev.AuthorID,
		Reason:      reason,
		CreatedAt:   s.clock.Now().UTC(),
	}
	if err := s.warnings.SaveWarning(w); err != nil {
		return fmt.Errorf("recording warning: %w", err)
	}
	s.logger.Info("member warned", "guild_id", w.GuildID, "user_id", w.UserID, "moderator_id", w.ModeratorID)

	err = s.platform.SendDirect(ctx, member.ID, chat.Card(chat.Embed{
		Title:       "Warning",
		Description: "You have received a warning in " + req.ev.GuildName,
		Color:       chat.ColorRed,
		Fields: []chat.Field{
			{Name: "Reason", Value: reason, Inline: true},
			{Name: "Warned by", Value: req.ev.AuthorName, Inline: true},
		},
		Footer: "Please review the server rules. Repeated warnings may result in further action.",
	}))
	mention := chat.Mention(member.ID)
	if err != nil {
		s.reply(req, chat.Text(fmt.Sprintf("⚠️ Could not DM %s, but the warning has been recorded. Reason: %s", mention, reason)))
		return nil
	}
	s.reply(req, chat.Text(fmt.Sprintf("✅ %s has been warned. Reason: %s", mention, reason)))
	return nil
}

func (s *Service) cmdMute(ctx context.Context, req *request) error {
	member, rest, ok, err := s.moderationTarget(ctx, req, chat.PermModerateMembers, msgMuteNoPerm)
	if err != nil || !ok {
		return err
	}

	arg, reason := nextArg(rest)
	minutes, err := strconv.Atoi(arg)
	if err != nil || minutes <= 0 || minutes > maxMuteMinutes {
		s.reply(req, chat.Text(msgMuteBadDuration))
		return nil
	}
	if reason == "" {
		reason = noReason
	}

	until := s.clock.Now().Add(time.Duration(minutes) * time.Minute)
	if err := s.platform.TimeoutMember(ctx, req.ev.GuildID, member.ID, until, reason); err != nil {
		if errors.Is(err, chat.ErrForbidden) {
			s.reply(req, chat.Text(msgMuteBotForbidden))
			return nil
		}
		s.logger.Warn("timeout failed", "guild_id", req.ev.GuildID, "user_id", member.ID, "error", err)
		s.reply(req, chat.Text(msgMuteFailed))
		return nil
	}
	s.logger.Info("member timed out", "guild_id", req.ev.GuildID, "user_id", member.ID, "minutes", minutes, "moderator_id", req.ev.AuthorID)

	s.reply(req, chat.Card(chat.Embed{
		Title:       "User Timed Out",
		Description: fmt.Sprintf("%s has been timed out for %d minutes.", chat.Mention(member.ID), minutes),
		Color:       chat.ColorOrange,
		Fields:      []chat.Field{{Name: "Reason", Value: reason, Inline: true}},
	}))

	dm := fmt.Sprintf("You have been timed out in %s for %d minutes. Reason: %s", req.ev.GuildName, minutes, reason)
	if err := s.platform.SendDirect(ctx, member.ID, chat.Text(dm)); err != nil {
		s.logger.Debug("timeout DM failed", "user_id", member.ID, "error", err)
	}
	return nil
}
