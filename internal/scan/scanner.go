// Package scan checks inbound message bodies against every member's
// trigger words.
//
// Matching is a case-insensitive plain substring test: "sad" matches
// "crusade". The scan covers all members' lists, not only the author's,
// because a message in a shared channel is read by everyone present.
package scan

import (
	"log/slog"
	"strings"
)

// WarningText is posted to the channel when a message matches.
const WarningText = "⚠️ Content warning: This message may contain triggering content for some members."

// Source supplies the current trigger lists. Implemented by profile.Manager.
type Source interface {
	TriggerLists() [][]string
}

// Match describes the first trigger word found in a body.
type Match struct {
	Word string
}

// Scanner checks message bodies against a Source.
type Scanner struct {
	src    Source
	logger *slog.Logger
}

// New creates a Scanner reading trigger lists from src.
func New(src Source) *Scanner {
	return &Scanner{src: src, logger: slog.Default()}
}

// Check scans body against every member's trigger list.
func (s *Scanner) Check(body string) (Match, bool) {
	m, ok := Scan(body, s.src.TriggerLists())
	if ok {
		// The word itself is private to its owner; log only that a match happened.
		s.logger.Debug("content warning raised", "body_len", len(body))
	}
	return m, ok
}

// Scan reports the first trigger word contained in body, ignoring case.
// Lists are walked in order and scanning stops at the first hit. Blank
// words never match.
func Scan(body string, lists [][]string) (Match, bool) {
	if body == "" {
		return Match{}, false
	}
	lower := strings.ToLower(body)
	for _, list := range lists {
		for _, word := range list {
			if word == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(word)) {
				return Match{Word: word}, true
			}
		}
	}
	return Match{}, false
}
