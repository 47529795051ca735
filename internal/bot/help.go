package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/kalambet/slaymom/internal/chat"
)

type helpTopic struct {
	title string
	body  string // %[1]s is the prefix
}

var helpTopics = map[string]helpTopic{
	"pronouns": {
		"Pronouns Command",
		"Set your preferred pronouns with `%[1]spronouns <your pronouns>`.\n\nExamples:\n`%[1]spronouns she/her`\n`%[1]spronouns they/them`\n`%[1]spronouns he/they`",
	},
	"trigger": {
		"Trigger Command",
		"Add or remove trigger words with `%[1]strigger add <word>` or `%[1]strigger remove <word>`.\nView your triggers with `%[1]strigger list`.",
	},
	"birthday": {
		"Birthday Command",
		"Set your birthday with `%[1]sbirthday DD-MM-YYYY`.\nI'll remember and celebrate with you!",
	},
	"milestone": {
		"Milestone Command",
		"Record a milestone with `%[1]smilestone DD-MM-YYYY <description>`.\nA second milestone on the same day replaces the first.",
	},
	"dailyaffirmation": {
		"Daily Affirmation Command",
		"Get the daily affirmation by DM with `%[1]sdailyaffirmation on`.\nStop with `%[1]sdailyaffirmation off`.",
	},
	"affirmation": {
		"Affirmation Command",
		"Get a positive affirmation with `%[1]saffirmation`.",
	},
	"comfort": {
		"Comfort Command",
		"Receive comforting words with `%[1]scomfort`.",
	},
	"celebrate": {
		"Celebrate Command",
		"Celebrate a win with `%[1]scelebrate <achievement>`.",
	},
	"vent": {
		"Vent Command",
		"Create a private thread to vent with `%[1]svent`.\nI'll be there to listen and support you.",
	},
	"resources": {
		"Resources Command",
		"Get LGBTQIA+ resources with `%[1]sresources`.\nYou can also specify a category: `%[1]sresources communities`, `%[1]sresources youtube`, or `%[1]sresources support`.",
	},
	"tw": {
		"Trigger Warning Command",
		"Add a trigger warning to your message with `%[1]stw <topic> <your message>`.\nThis will put your message in a spoiler with a warning.",
	},
	"pride": {
		"Pride Command",
		"Show some pride with `%[1]spride [flag]`.\nFlags: rainbow, trans, bi, pan, ace, nb.",
	},
	"warn": {
		"Warn Command",
		"Warn a member with `%[1]swarn @member [reason]`.\nRequires the Manage Messages permission.",
	},
	"mute": {
		"Mute Command",
		"Time out a member with `%[1]smute @member <minutes> [reason]`.\nRequires the Moderate Members permission.",
	},
	"forgetme": {
		"Forget Me Command",
		"Delete all your stored data with `%[1]sforgetme`.\nThis action cannot be undone.",
	},
}

func (s *Service) cmdHelp(_ context.Context, req *request) error {
	p := s.cfg.Prefix
	topic, _ := nextArg(req.args)

	if topic == "" {
		s.reply(req, chat.Card(chat.Embed{
			Title:       "Slayy Mom Bot - Help Menu",
			Description: "I'm your supportive Discord mom! Here are my commands:",
			Color:       chat.ColorMagenta,
			Fields: []chat.Field{
				{Name: "🔧 User Setup", Value: fmt.Sprintf(
					"`%[1]spronouns` - Set your preferred pronouns\n"+
						"`%[1]strigger` - Add words to your trigger list\n"+
						"`%[1]sbirthday` - Set your birthday for celebrations\n"+
						"`%[1]smilestone` - Remember a special day\n"+
						"`%[1]sdailyaffirmation` - Get the daily affirmation by DM", p)},
				{Name: "💖 Support & Affirmations", Value: fmt.Sprintf(
					"`%[1]saffirmation` - Get a positive affirmation\n"+
						"`%[1]scomfort` - Receive comforting words\n"+
						"`%[1]scelebrate` - Celebrate a win\n"+
						"`%[1]svent` - Create a private thread to vent", p)},
				{Name: "🛡️ Safety & Resources", Value: fmt.Sprintf(
					"`%[1]sresources` - Get LGBTQIA+ resources\n"+
						"`%[1]stw <topic>` - Add a trigger warning\n"+
						"`%[1]spride` - Show some pride\n"+
						"`%[1]sforgetme` - Delete your stored data", p)},
				{Name: "ℹ️ More Info", Value: fmt.Sprintf(
					"Type `%[1]shelp <command>` for more details on a specific command.", p)},
			},
			Footer: "Slayy Mom loves you unconditionally! 🌈",
		}))
		return nil
	}

	info, ok := helpTopics[strings.ToLower(topic)]
	if !ok {
		s.reply(req, chat.Card(chat.Embed{
			Title:       "Command Not Found",
			Description: fmt.Sprintf("I couldn't find information for `%s`.\nUse `%shelp` to see all available commands.", topic, p),
			Color:       chat.ColorRed,
		}))
		return nil
	}
	s.reply(req, chat.Card(chat.Embed{
		Title:       info.title,
		Description: fmt.Sprintf(info.body, p),
		Color:       chat.ColorMagenta,
	}))
	return nil
}
