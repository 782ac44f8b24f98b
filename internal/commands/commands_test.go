package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/internal/command"
	"github.com/keshon/cuboid/pkg/cmd"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	responses []*discordgo.InteractionResponse
}

func (r *recorder) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	r.responses = append(r.responses, resp)
	return nil
}

func (r *recorder) FollowupMessageCreate(*discordgo.Interaction, bool, *discordgo.WebhookParams, ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{}, nil
}

type stubBot struct{ registry *cmd.Registry }

func (b stubBot) Logger() zerolog.Logger             { return zerolog.Nop() }
func (b stubBot) DevelopmentGuild() *discordgo.Guild { return nil }
func (b stubBot) Commands() []cmd.Command            { return b.registry.All() }

func loadShipped(t *testing.T) *cmd.Registry {
	t.Helper()
	reg, err := command.Load(Definitions, Dir, Executors(), zerolog.Nop())
	require.NoError(t, err)
	return reg
}

func run(t *testing.T, reg *cmd.Registry, name string, opts ...*discordgo.ApplicationCommandInteractionDataOption) *recorder {
	t.Helper()
	r := &recorder{}
	in := command.NewInteraction(r, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: name, CommandType: discordgo.ChatApplicationCommand, Options: opts},
	}})
	c, ok := reg.Get(name)
	require.True(t, ok)
	require.NoError(t, c.Run(context.Background(), &cmd.Invocation{Data: &command.Context{Bot: stubBot{reg}, Interaction: in}}))
	return r
}

func TestEveryExecutorHasAModule(t *testing.T) {
	var buf bytes.Buffer
	_, err := command.Load(Definitions, Dir, Executors(), zerolog.New(&buf).Level(zerolog.WarnLevel))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestShippedModulesLoad(t *testing.T) {
	reg := loadShipped(t)
	assert.Equal(t, 2, reg.Len())

	def := command.Definition(mustGet(t, reg, "ping"))
	require.NotNil(t, def.DescriptionLocalizations)
	assert.Equal(t, "Sprawdź łączność.", (*def.DescriptionLocalizations)[discordgo.Polish])
	assert.Equal(t, "Probar la conectividad.", (*def.DescriptionLocalizations)[discordgo.SpanishES])
}

func TestPingRepliesPong(t *testing.T) {
	r := run(t, loadShipped(t), "ping")
	require.Len(t, r.responses, 1)
	assert.Equal(t, "Pong!", r.responses[0].Data.Content)
	assert.Zero(t, r.responses[0].Data.Flags)
}

func TestHelpListsCommands(t *testing.T) {
	r := run(t, loadShipped(t), "help")
	require.Len(t, r.responses, 1)
	embed := r.responses[0].Data.Embeds[0]
	assert.Contains(t, embed.Description, "`/help`")
	assert.Contains(t, embed.Description, "`/ping` Check connectivity.")
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.responses[0].Data.Flags)
}

func TestHelpSingleCommand(t *testing.T) {
	r := run(t, loadShipped(t), "help", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "command", Type: discordgo.ApplicationCommandOptionString, Value: "/ping",
	})
	require.Len(t, r.responses, 1)
	assert.Equal(t, "/ping", r.responses[0].Data.Embeds[0].Title)

	r = run(t, loadShipped(t), "help", &discordgo.ApplicationCommandInteractionDataOption{
		Name: "command", Type: discordgo.ApplicationCommandOptionString, Value: "nope",
	})
	assert.Contains(t, r.responses[0].Data.Content, "Unknown command")
}

func mustGet(t *testing.T, reg *cmd.Registry, name string) cmd.Command {
	t.Helper()
	c, ok := reg.Get(name)
	require.True(t, ok)
	return c
}
