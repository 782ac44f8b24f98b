package command

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type fakeResponder struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	fail      error
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.followups = append(f.followups, data)
	return &discordgo.Message{Content: data.Content}, nil
}

var errRest = errors.New("rest unavailable")

func slashEvent(name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "1",
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "guild-1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "alice"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:        name,
			CommandType: discordgo.ChatApplicationCommand,
			Options:     opts,
		},
	}}
}
