package discord

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"

	"github.com/kalambet/slaymom/internal/chat"
)

func TestRenderText(t *testing.T) {
	got := render(chat.Text("hello"))
	if got.Content != "hello" || len(got.Embeds) != 0 {
		t.Errorf("render = %+v", got)
	}
}

func TestRenderEmbed(t *testing.T) {
	got := render(chat.Card(chat.Embed{
		Title:       "💖 Daily Affirmation",
		Description: "You are loved",
		Color:       chat.ColorPink,
		Fields:      []chat.Field{{Name: "Reason", Value: "spam", Inline: true}},
		Footer:      "Slayy Mom loves you! 🌈",
	}))

	want := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "💖 Daily Affirmation",
			Description: "You are loved",
			Color:       0xFF69B4,
			Fields:      []*discordgo.MessageEmbedField{{Name: "Reason", Value: "spam", Inline: true}},
			Footer:      &discordgo.MessageEmbedFooter{Text: "Slayy Mom loves you! 🌈"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderEmbedWithoutFooter(t *testing.T) {
	got := render(chat.Card(chat.Embed{Title: "t"}))
	if got.Embeds[0].Footer != nil {
		t.Errorf("footer = %+v, want nil", got.Embeds[0].Footer)
	}
}

func TestToEvent(t *testing.T) {
	state := discordgo.NewState()
	if err := state.GuildAdd(&discordgo.Guild{ID: "g1", Name: "Rainbow House"}); err != nil {
		t.Fatal(err)
	}

	ts := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	got := toEvent(state, &discordgo.Message{
		ID:        "m1",
		ChannelID: "c1",
		GuildID:   "g1",
		Content:   "!vent",
		Timestamp: ts,
		Author:    &discordgo.User{ID: "u1", Username: "sam", GlobalName: "Sam"},
		Member:    &discordgo.Member{Nick: "Sammy"},
	})

	want := chat.Event{
		ID:         "m1",
		AuthorID:   "u1",
		AuthorName: "Sammy",
		ChannelID:  "c1",
		GuildID:    "g1",
		GuildName:  "Rainbow House",
		Content:    "!vent",
		Received:   ts,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("toEvent mismatch (-want +got):\n%s", diff)
	}
}

func TestToEventDirectFromBot(t *testing.T) {
	got := toEvent(nil, &discordgo.Message{
		ID:        "m2",
		ChannelID: "dm",
		Author:    &discordgo.User{ID: "b1", Username: "helper", Bot: true},
	})
	if !got.Direct() || !got.Bot || got.AuthorName != "helper" {
		t.Errorf("event = %+v", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name   string
		member *discordgo.Member
		user   *discordgo.User
		want   string
	}{
		{"nick", &discordgo.Member{Nick: "Nick"}, &discordgo.User{Username: "u", GlobalName: "G"}, "Nick"},
		{"global", &discordgo.Member{}, &discordgo.User{Username: "u", GlobalName: "G"}, "G"},
		{"username", nil, &discordgo.User{Username: "u"}, "u"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayName(tt.member, tt.user); got != tt.want {
				t.Errorf("displayName = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToMember(t *testing.T) {
	got := toMember(&discordgo.Member{User: &discordgo.User{ID: "42", Username: "alex"}})
	if got != (chat.Member{ID: "42", DisplayName: "alex"}) {
		t.Errorf("toMember = %+v", got)
	}
}

func restError(status int) error {
	return fmt.Errorf("sending: %w", &discordgo.RESTError{
		Response:     &http.Response{StatusCode: status},
		ResponseBody: []byte(`{"message":"nope"}`),
	})
}

func TestMapError(t *testing.T) {
	if mapError(nil) != nil {
		t.Error("mapError(nil) != nil")
	}
	if err := mapError(restError(http.StatusForbidden)); !errors.Is(err, chat.ErrForbidden) {
		t.Errorf("403 mapped to %v", err)
	}
	if err := mapError(restError(http.StatusNotFound)); !errors.Is(err, chat.ErrNotFound) {
		t.Errorf("404 mapped to %v", err)
	}

	other := restError(http.StatusInternalServerError)
	if err := mapError(other); errors.Is(err, chat.ErrForbidden) || errors.Is(err, chat.ErrNotFound) || err != other {
		t.Errorf("500 mapped to %v", err)
	}
	plain := errors.New("gateway closed")
	if mapError(plain) != plain {
		t.Error("non-REST error changed")
	}
}

func TestArchiveMinutes(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 60},
		{time.Hour, 60},
		{24 * time.Hour, 1440},
		{48 * time.Hour, 4320},
		{7 * 24 * time.Hour, 10080},
		{30 * 24 * time.Hour, 10080},
	}
	for _, tt := range tests {
		if got := archiveMinutes(tt.in); got != tt.want {
			t.Errorf("archiveMinutes(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPermissionBits(t *testing.T) {
	for _, p := range []chat.Permission{chat.PermManageMessages, chat.PermModerateMembers} {
		if _, ok := permissionBits[p]; !ok {
			t.Errorf("no bit for %s", p)
		}
	}
}

func TestNewRejectsEmptyToken(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error")
	}
	a, err := New("abc")
	if err != nil {
		t.Fatal(err)
	}
	if a.session.Identify.Intents != Intents {
		t.Errorf("intents = %v", a.session.Identify.Intents)
	}
}
