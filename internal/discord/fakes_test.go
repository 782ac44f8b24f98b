package discord

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/internal/command"
	"github.com/keshon/cuboid/pkg/cmd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type editCall struct {
	appID, guildID, cmdID string
	cmd                   *discordgo.ApplicationCommand
}

type fakeCommandAPI struct {
	mu       sync.Mutex
	remote   []*discordgo.ApplicationCommand
	fetchErr error
	editErr  error
	fetched  []string
	edits    []editCall

	// fetching, when set, is signalled once a fetch starts; the fetch then
	// holds until release is closed.
	fetching chan struct{}
	release  chan struct{}
}

func (f *fakeCommandAPI) ApplicationCommands(appID, guildID string, _ ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error) {
	if f.fetching != nil {
		f.fetching <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, appID+"/"+guildID)
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.remote, nil
}

func (f *fakeCommandAPI) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fetched)
}

func (f *fakeCommandAPI) ApplicationCommandEdit(appID, guildID, cmdID string, c *discordgo.ApplicationCommand, _ ...discordgo.RequestOption) (*discordgo.ApplicationCommand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editCall{appID: appID, guildID: guildID, cmdID: cmdID, cmd: c})
	if f.editErr != nil {
		return nil, f.editErr
	}
	return c, nil
}

type fakeResponder struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
}

func (f *fakeResponder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeResponder) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.followups = append(f.followups, data)
	return &discordgo.Message{}, nil
}

var errBoom = errors.New("boom")

func pingDefinition() *discordgo.ApplicationCommand {
	loc := map[discordgo.Locale]string{
		discordgo.SpanishES: "Probar la conectividad.",
		discordgo.Polish:    "Sprawdź łączność.",
	}
	return &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     "ping",
		Description:              "Check connectivity.",
		DescriptionLocalizations: &loc,
	}
}

func newTestRegistry(t *testing.T, defs map[*discordgo.ApplicationCommand]command.Executor) *cmd.Registry {
	t.Helper()
	reg := cmd.NewRegistry()
	for def, exec := range defs {
		d, err := command.NewDescriptor(def, exec)
		require.NoError(t, err)
		require.NoError(t, reg.Register(cmd.Apply(d, command.WithRecover())))
	}
	return reg
}

func okExecutor(context.Context, *command.Context) error { return nil }

func slashEvent(name string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		ID:      "i1",
		Type:    discordgo.InteractionApplicationCommand,
		GuildID: "g1",
		Member:  &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "alice"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:        name,
			CommandType: discordgo.ChatApplicationCommand,
		},
	}}
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }
