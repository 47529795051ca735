package chat

import "testing"

func TestParseMention(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"<@123456>", "123456", true},
		{"<@!123456>", "123456", true},
		{"123456", "123456", true},
		{" <@42> ", "42", true},
		{"<@>", "", false},
		{"<#123>", "", false},
		{"@someone", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseMention(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMention(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEventHelpers(t *testing.T) {
	ev := Event{AuthorID: "7", GuildID: ""}
	if !ev.Direct() {
		t.Error("event without guild should be direct")
	}
	if ev.Mention() != "<@7>" {
		t.Errorf("Mention = %q", ev.Mention())
	}
	ev.GuildID = "g"
	if ev.Direct() {
		t.Error("guild event reported as direct")
	}
}
