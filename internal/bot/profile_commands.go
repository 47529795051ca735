package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kalambet/slaymom/internal/chat"
	"github.com/kalambet/slaymom/internal/flow"
	"github.com/kalambet/slaymom/internal/profile"
)

func (s *Service) cmdPronouns(_ context.Context, req *request) error {
	uid := req.ev.AuthorID
	pronouns := strings.TrimSpace(req.args)

	if pronouns == "" {
		p, err := s.profiles.GetOrCreate(uid)
		if err != nil {
			return err
		}
		s.reply(req, chat.Card(chat.Embed{
			Title:       "Your Pronouns",
			Description: fmt.Sprintf("Your current pronouns are: **%s**", p.PronounsOr("not set")),
			Color:       chat.ColorPink,
			Fields: []chat.Field{{
				Name: "How to Update",
				Value: fmt.Sprintf("To update your pronouns, use `%[1]spronouns your/pronouns`\nExamples: `%[1]spronouns she/her`, `%[1]spronouns they/them`, `%[1]spronouns he/him/his`",
					s.cfg.Prefix),
			}},
		}))
		return nil
	}

	if _, err := s.profiles.SetPronouns(uid, pronouns); err != nil {
		return err
	}
	s.reply(req, chat.Card(chat.Embed{
		Title:       "Pronouns Updated",
		Description: fmt.Sprintf("I've updated your pronouns to: **%s**", pronouns),
		Color:       chat.ColorGreen,
		Footer:      "Thank you for sharing this with me! 💖",
	}))
	return nil
}

func (s *Service) cmdTrigger(_ context.Context, req *request) error {
	sub, word := nextArg(req.args)
	word = unquote(word)
	switch strings.ToLower(sub) {
	case "add":
		return s.triggerAdd(req, word)
	case "remove":
		return s.triggerRemove(req, word)
	case "list":
		return s.triggerList(req)
	default:
		p := s.cfg.Prefix
		return usagef("Please use one of the subcommands: `%[1]strigger add`, `%[1]strigger remove`, or `%[1]strigger list`", p)
	}
}

func (s *Service) triggerAdd(req *request, word string) error {
	if word == "" {
		return usagef("Usage: `%strigger add <word>`", s.cfg.Prefix)
	}

	added, err := s.profiles.AddTrigger(req.ev.AuthorID, word)
	if err != nil {
		return err
	}
	if !added {
		s.reply(req, chat.Text(fmt.Sprintf("'%s' is already in your trigger list.", word)))
		return nil
	}

	err = s.direct(req, chat.Card(chat.Embed{
		Title:       "Trigger Word Added",
		Description: fmt.Sprintf("I've added '%s' to your trigger list. I'll help warn about content containing this.", word),
		Color:       chat.ColorGreen,
		Footer:      footerPrivacy,
	}))
	if err != nil {
		s.logDMFailure(req, err)
		s.reply(req, chat.Text(msgTriggerAddedNoDM))
		return nil
	}
	if !req.ev.Direct() {
		s.reply(req, chat.Text(msgDMSent))
	}
	return nil
}

func (s *Service) triggerRemove(req *request, word string) error {
	if word == "" {
		return usagef("Usage: `%strigger remove <word>`", s.cfg.Prefix)
	}

	removed, ok, err := s.profiles.RemoveTrigger(req.ev.AuthorID, word)
	if err != nil {
		return err
	}
	if !ok {
		p, found, err := s.profiles.Lookup(req.ev.AuthorID)
		if err != nil {
			return err
		}
		if !found || len(p.Triggers) == 0 {
			s.reply(req, chat.Text(msgNoTriggers))
		} else {
			s.reply(req, chat.Text(fmt.Sprintf("'%s' was not found in your trigger list.", word)))
		}
		return nil
	}

	if err := s.direct(req, chat.Text(fmt.Sprintf("I've removed '%s' from your trigger list.", removed))); err != nil {
		s.logDMFailure(req, err)
		s.reply(req, chat.Text(fmt.Sprintf("Removed '%s' from your trigger list.", removed)))
		return nil
	}
	if !req.ev.Direct() {
		s.reply(req, chat.Text(msgDMSent))
	}
	return nil
}

func (s *Service) triggerList(req *request) error {
	p, found, err := s.profiles.Lookup(req.ev.AuthorID)
	if err != nil {
		return err
	}
	if !found || len(p.Triggers) == 0 {
		s.reply(req, chat.Text(msgNoTriggers))
		return nil
	}

	lines := make([]string, len(p.Triggers))
	for i, t := range p.Triggers {
		lines[i] = "• " + t
	}
	err = s.direct(req, chat.Card(chat.Embed{
		Title:       "Your Trigger Words",
		Description: "Here are the words on your trigger list:",
		Color:       chat.ColorBlue,
		Fields:      []chat.Field{{Name: "Words", Value: strings.Join(lines, "\n")}},
		Footer:      footerPrivacy,
	}))
	if err != nil {
		s.logDMFailure(req, err)
		s.reply(req, chat.Text(msgTriggerListNoDM))
		return nil
	}
	if !req.ev.Direct() {
		s.reply(req, chat.Text(msgTriggerListDM))
	}
	return nil
}

func (s *Service) logDMFailure(req *request, err error) {
	if errors.Is(err, chat.ErrForbidden) {
		s.logger.Debug("member does not accept DMs", "user_id", req.ev.AuthorID)
		return
	}
	s.logger.Warn("DM failed", "user_id", req.ev.AuthorID, "error", err)
}

func (s *Service) cmdBirthday(_ context.Context, req *request) error {
	uid := req.ev.AuthorID
	arg, _ := nextArg(req.args)

	if arg == "" {
		p, err := s.profiles.GetOrCreate(uid)
		if err != nil {
			return err
		}
		s.reply(req, chat.Card(chat.Embed{
			Title:       "Your Birthday",
			Description: fmt.Sprintf("Your birthday is currently: **%s**", p.BirthdateOr("not set")),
			Color:       chat.ColorPink,
			Fields: []chat.Field{{
				Name:  "How to Update",
				Value: fmt.Sprintf("To update your birthday, use `%[1]sbirthday DD-MM-YYYY`\nExample: `%[1]sbirthday 15-06-1995`", s.cfg.Prefix),
			}},
		}))
		return nil
	}

	d, err := profile.ParseDate(arg)
	if err != nil {
		return usagef("Invalid date format. Please use DD-MM-YYYY (e.g., 15-06-1995).")
	}
	if _, err := s.profiles.SetBirthdate(uid, d); err != nil {
		return err
	}
	s.reply(req, chat.Card(chat.Embed{
		Title:       "Birthday Updated",
		Description: fmt.Sprintf("I've updated your birthday to: **%s**", d),
		Color:       chat.ColorGreen,
		Footer:      "I'll remember to celebrate with you! 🎂",
	}))
	return nil
}

func (s *Service) cmdMilestone(_ context.Context, req *request) error {
	arg, description := nextArg(req.args)
	description = unquote(description)
	if arg == "" || description == "" {
		return usagef("Usage: `%smilestone DD-MM-YYYY <description>`", s.cfg.Prefix)
	}

	d, err := profile.ParseDate(arg)
	if err != nil {
		return usagef("Invalid date format. Please use DD-MM-YYYY (e.g., 15-06-2022).")
	}
	replaced, err := s.profiles.UpsertMilestone(req.ev.AuthorID, d, description)
	if err != nil {
		return err
	}

	title := "Milestone Added"
	if replaced {
		title = "Milestone Updated"
	}
	s.reply(req, chat.Card(chat.Embed{
		Title:       title,
		Description: fmt.Sprintf("I've added your milestone: **%s** on **%s**", description, d),
		Color:       chat.ColorGreen,
		Footer:      "I'll remember to celebrate this special day with you! 🎉",
	}))
	return nil
}

func (s *Service) cmdDailyAffirmation(_ context.Context, req *request) error {
	uid := req.ev.AuthorID
	arg, _ := nextArg(req.args)

	var on bool
	switch strings.ToLower(arg) {
	case "on":
		on = true
	case "off":
		on = false
	case "":
		p, err := s.profiles.GetOrCreate(uid)
		if err != nil {
			return err
		}
		state := "off"
		if p.Preference(profile.PrefDailyAffirmation) {
			state = "on"
		}
		s.reply(req, chat.Text(fmt.Sprintf("Daily affirmations by DM are **%s** for you. Use `%sdailyaffirmation on|off` to change.", state, s.cfg.Prefix)))
		return nil
	default:
		return usagef("Usage: `%sdailyaffirmation on|off`", s.cfg.Prefix)
	}

	if _, err := s.profiles.SetPreference(uid, profile.PrefDailyAffirmation, on); err != nil {
		return err
	}
	if on {
		s.reply(req, chat.Text("I'll send you a daily affirmation every morning! 💖"))
	} else {
		s.reply(req, chat.Text("Okay, no more daily affirmations by DM. I still love you! 🌈"))
	}
	return nil
}

// cmdForgetMe deletes the author's profile after a yes/no confirmation.
// Anything other than a yes leaves the profile untouched.
func (s *Service) cmdForgetMe(ctx context.Context, req *request) error {
	prompt := chat.Card(chat.Embed{
		Title:       "⚠️ Delete Your Data?",
		Description: "Are you sure you want to delete all your stored data? This cannot be undone.",
		Color:       chat.ColorRed,
		Fields:      []chat.Field{{Name: "Confirmation", Value: "Reply with 'yes' to confirm or 'no' to cancel."}},
	})

	decision, err := s.flows.Confirm(ctx, req.ev.AuthorID, req.ev.ChannelID, s.cfg.ConfirmTimeout, func() error {
		return s.platform.Send(ctx, req.ev.ChannelID, prompt)
	})
	if err != nil {
		return fmt.Errorf("asking for confirmation: %w", err)
	}

	switch decision {
	case flow.DecisionYes:
		existed, err := s.profiles.Delete(req.ev.AuthorID)
		if err != nil {
			return err
		}
		if !existed {
			s.reply(req, chat.Text(msgForgetNoData))
			return nil
		}
		s.logger.Info("profile deleted on request", "user_id", req.ev.AuthorID)
		s.reply(req, chat.Card(chat.Embed{
			Title:       "Data Deleted",
			Description: msgForgetDeleted,
			Color:       chat.ColorGreen,
		}))
	case flow.DecisionNo:
		s.reply(req, chat.Text(msgForgetCancelled))
	case flow.DecisionTimeout:
		s.reply(req, chat.Text(msgForgetTimeout))
	default:
		// Shutting down.
	}
	return nil
}
