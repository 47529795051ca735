package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/kalambet/slaymom/internal/chat"
)

func toEvent(state *discordgo.State, m *discordgo.Message) chat.Event {
	ev := chat.Event{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
		Received:  m.Timestamp,
	}
	if m.Author != nil {
		ev.AuthorID = m.Author.ID
		ev.Bot = m.Author.Bot
		ev.AuthorName = displayName(m.Member, m.Author)
	}
	if m.GuildID != "" && state != nil {
		if g, err := state.Guild(m.GuildID); err == nil {
			ev.GuildName = g.Name
		}
	}
	return ev
}

func toMember(m *discordgo.Member) chat.Member {
	if m.User == nil {
		return chat.Member{DisplayName: m.Nick}
	}
	return chat.Member{ID: m.User.ID, DisplayName: displayName(m, m.User)}
}

// displayName prefers the guild nickname, then the global display name,
// then the username.
func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func render(r chat.Reply) *discordgo.MessageSend {
	out := &discordgo.MessageSend{Content: r.Text}
	if r.Embed == nil {
		return out
	}

	e := &discordgo.MessageEmbed{
		Title:       r.Embed.Title,
		Description: r.Embed.Description,
		Color:       r.Embed.Color,
	}
	for _, f := range r.Embed.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if r.Embed.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: r.Embed.Footer}
	}
	out.Embeds = []*discordgo.MessageEmbed{e}
	return out
}
