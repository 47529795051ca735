package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kalambet/slaymom/internal/chat"
	"github.com/kalambet/slaymom/internal/flow"
)

const ventArchive = 24 * time.Hour

func (s *Service) cmdAffirmation(_ context.Context, req *request) error {
	text, ok := s.content.RandomGeneral()
	if !ok {
		s.reply(req, chat.Text(msgNoAffirmations))
		return nil
	}
	s.reply(req, chat.Card(chat.Embed{
		Title:       "💖 Affirmation for You",
		Description: text,
		Color:       chat.ColorPink,
		Footer:      "Remember that you are loved! 🌈",
	}))
	return nil
}

func (s *Service) cmdComfort(_ context.Context, req *request) error {
	text, ok := s.content.RandomComfort()
	if !ok {
		s.reply(req, chat.Text(msgNoComfort))
		return nil
	}
	s.reply(req, chat.Card(chat.Embed{
		Title:       "🫂 Mom's Here For You",
		Description: text,
		Color:       chat.ColorPurple,
		Footer:      "It's okay to not be okay sometimes. I'm here for you. 💜",
	}))
	return nil
}

func (s *Service) cmdCelebrate(_ context.Context, req *request) error {
	achievement := strings.TrimSpace(req.args)
	if achievement == "" {
		return usagef("Usage: `%scelebrate <achievement>`", s.cfg.Prefix)
	}
	s.reply(req, chat.Card(chat.Embed{
		Title:       "Time to Celebrate!",
		Description: fmt.Sprintf(s.choose(celebrations), achievement),
		Color:       chat.ColorGold,
		Footer:      "I'm always here to celebrate your wins, big and small! 💕",
	}))
	return nil
}

// cmdVent opens a thread for the author and waits for them to speak in
// it. The first message gets a comforting reply after a short pause; if
// none arrives in time the bot leaves a gentle note instead.
func (s *Service) cmdVent(ctx context.Context, req *request) error {
	if req.ev.Direct() {
		s.reply(req, chat.Text(msgVentGuildOnly))
		return nil
	}

	name := req.ev.AuthorName + "'s vent"
	if topic := strings.TrimSpace(req.args); topic != "" {
		name += " about " + topic
	}

	threadID, err := s.platform.CreateThread(ctx, req.ev.ChannelID, chat.ThreadOptions{Name: name, AutoArchive: ventArchive})
	if err != nil {
		return s.ventFailed(req, err)
	}
	if err := s.platform.AddThreadMember(ctx, threadID, req.ev.AuthorID); err != nil {
		return s.ventFailed(req, err)
	}

	welcome := chat.Card(chat.Embed{
		Title: "Safe Space for Venting",
		Description: fmt.Sprintf("Hi %s, this is your safe space to vent.\n\n"+
			"I'm here to listen. Take your time and share what's on your mind. "+
			"Remember that your feelings are valid, and it's okay to let them out.", req.ev.Mention()),
		Color: chat.ColorSoftPurple,
	})

	res, err := s.flows.FollowUp(ctx, req.ev.AuthorID, threadID, s.cfg.VentTimeout, func() error {
		return s.platform.Send(ctx, threadID, welcome)
	})
	if err != nil {
		return s.ventFailed(req, err)
	}

	var out chat.Reply
	switch res.Outcome {
	case flow.Satisfied:
		if err := s.sleep(ctx, s.cfg.VentReplyDelay); err != nil {
			return err
		}
		out = chat.Text(s.choose(ventReplies))
	case flow.TimedOut:
		out = chat.Text(msgVentStillHere)
	default:
		return nil
	}
	if err := s.platform.Send(ctx, threadID, out); err != nil {
		s.logger.Warn("vent reply failed", "thread_id", threadID, "error", err)
	}
	return nil
}

func (s *Service) ventFailed(req *request, err error) error {
	if errors.Is(err, chat.ErrForbidden) {
		s.reply(req, chat.Text(msgVentForbidden))
		return nil
	}
	if errors.Is(err, flow.ErrClosed) {
		return nil
	}
	s.logger.Warn("vent thread failed", "channel_id", req.ev.ChannelID, "error", err)
	s.reply(req, chat.Text(msgVentFailed))
	return nil
}
