package bot

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/kalambet/slaymom/internal/chat"
)

type command struct {
	name    string
	aliases []string
	run     func(s *Service, ctx context.Context, req *request) error
}

type request struct {
	ev   chat.Event
	args string
}

// usageError is a user mistake; its message goes back to the channel as is.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error {
	return &usageError{msg: fmt.Sprintf(format, a...)}
}

func (s *Service) registerCommands() {
	s.commands = make(map[string]*command)
	for _, c := range []*command{
		{name: "help", run: (*Service).cmdHelp},
		{name: "pronouns", run: (*Service).cmdPronouns},
		{name: "trigger", run: (*Service).cmdTrigger},
		{name: "birthday", run: (*Service).cmdBirthday},
		{name: "milestone", run: (*Service).cmdMilestone},
		{name: "forgetme", run: (*Service).cmdForgetMe},
		{name: "dailyaffirmation", run: (*Service).cmdDailyAffirmation},
		{name: "affirmation", run: (*Service).cmdAffirmation},
		{name: "comfort", run: (*Service).cmdComfort},
		{name: "celebrate", run: (*Service).cmdCelebrate},
		{name: "vent", run: (*Service).cmdVent},
		{name: "resources", run: (*Service).cmdResources},
		{name: "tw", aliases: []string{"trigger_warning"}, run: (*Service).cmdTriggerWarning},
		{name: "pride", run: (*Service).cmdPride},
		{name: "warn", run: (*Service).cmdWarn},
		{name: "mute", run: (*Service).cmdMute},
	} {
		s.order = append(s.order, c)
		s.commands[c.name] = c
		for _, a := range c.aliases {
			s.commands[a] = c
		}
	}
}

// parse splits "!name rest of line" into a registered command and its
// arguments. Command names are matched without regard to case.
func (s *Service) parse(body string) (*command, string, bool) {
	if !strings.HasPrefix(body, s.cfg.Prefix) {
		return nil, "", false
	}
	rest := body[len(s.cfg.Prefix):]
	if rest == "" || unicode.IsSpace(rune(rest[0])) {
		return nil, "", false
	}

	name, args := nextArg(rest)
	cmd, ok := s.commands[strings.ToLower(name)]
	if !ok {
		return nil, "", false
	}
	return cmd, args, true
}

// nextArg returns the first argument of s and the trimmed remainder. A
// double-quoted argument may contain spaces.
func nextArg(s string) (arg, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	if s == "" {
		return "", ""
	}
	if s[0] == '"' {
		if end := strings.IndexByte(s[1:], '"'); end >= 0 {
			return s[1 : end+1], strings.TrimSpace(s[end+2:])
		}
	}
	if i := strings.IndexFunc(s, unicode.IsSpace); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

// unquote strips one pair of double quotes wrapping all of s, so a
// quoted remainder reads the same as a quoted first argument.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		if inner := s[1 : len(s)-1]; !strings.Contains(inner, `"`) {
			return strings.TrimSpace(inner)
		}
	}
	return s
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
