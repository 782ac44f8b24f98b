package discord

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

type stubBot struct{}

func (stubBot) Logger() zerolog.Logger             { return zerolog.Nop() }
func (stubBot) DevelopmentGuild() *discordgo.Guild { return nil }
func (stubBot) Commands() []cmd.Command            { return nil }

func dispatcherWith(t *testing.T, exec command.Executor, log zerolog.Logger) *Dispatcher {
	t.Helper()
	reg := newTestRegistry(t, map[*discordgo.ApplicationCommand]command.Executor{pingDefinition(): exec})
	return NewDispatcher(reg, stubBot{}, log)
}

func TestDispatchRunsCommandOnce(t *testing.T) {
	var calls int
	var seen *command.Context
	d := dispatcherWith(t, func(_ context.Context, c *command.Context) error {
		calls++
		seen = c
		return c.Interaction.Reply("Pong!")
	}, nopLogger())

	r := &fakeResponder{}
	e := slashEvent("ping")
	d.Handle(context.Background(), r, e)

	assert.Equal(t, 1, calls)
	require.NotNil(t, seen)
	assert.Same(t, e, seen.Interaction.Event())
	assert.NotNil(t, seen.Bot)
	require.Len(t, r.responses, 1)
	assert.Equal(t, "Pong!", r.responses[0].Data.Content)
	assert.Empty(t, r.followups)
}

func TestDispatchUnknownCommand(t *testing.T) {
	var buf bytes.Buffer
	var calls int
	d := dispatcherWith(t, func(context.Context, *command.Context) error {
		calls++
		return nil
	}, zerolog.New(&buf))

	r := &fakeResponder{}
	d.Handle(context.Background(), r, slashEvent("nope"))

	assert.Zero(t, calls)
	assert.Empty(t, r.responses)
	assert.Empty(t, r.followups)
	assert.Contains(t, buf.String(), "unrecognized command nope")
}

func TestDispatchIgnoresOtherInteractions(t *testing.T) {
	var calls int
	d := dispatcherWith(t, func(context.Context, *command.Context) error {
		calls++
		return nil
	}, nopLogger())
	r := &fakeResponder{}

	d.Handle(context.Background(), r, &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionMessageComponent,
		Data: discordgo.MessageComponentInteractionData{CustomID: "ping"},
	}})

	menu := slashEvent("ping")
	menu.Data = discordgo.ApplicationCommandInteractionData{Name: "ping", CommandType: discordgo.MessageApplicationCommand}
	d.Handle(context.Background(), r, menu)

	assert.Zero(t, calls)
	assert.Empty(t, r.responses)
}

func TestDispatchErrorBeforeReply(t *testing.T) {
	var buf bytes.Buffer
	d := dispatcherWith(t, func(context.Context, *command.Context) error {
		return errBoom
	}, zerolog.New(&buf))

	r := &fakeResponder{}
	d.Handle(context.Background(), r, slashEvent("ping"))

	require.Len(t, r.responses, 1)
	assert.Empty(t, r.followups)
	assert.Equal(t, errorReply, r.responses[0].Data.Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.responses[0].Data.Flags)
	assert.Contains(t, buf.String(), "boom")
}

func TestDispatchErrorAfterDefer(t *testing.T) {
	d := dispatcherWith(t, func(_ context.Context, c *command.Context) error {
		if err := c.Interaction.Defer(false); err != nil {
			return err
		}
		return errBoom
	}, nopLogger())

	r := &fakeResponder{}
	d.Handle(context.Background(), r, slashEvent("ping"))

	require.Len(t, r.responses, 1, "only the deferral")
	assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, r.responses[0].Type)
	require.Len(t, r.followups, 1)
	assert.Equal(t, errorReply, r.followups[0].Content)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, r.followups[0].Flags)
}

func TestDispatchErrorAfterReply(t *testing.T) {
	d := dispatcherWith(t, func(_ context.Context, c *command.Context) error {
		_ = c.Interaction.Reply("partial")
		return errBoom
	}, nopLogger())

	r := &fakeResponder{}
	d.Handle(context.Background(), r, slashEvent("ping"))

	require.Len(t, r.responses, 1)
	require.Len(t, r.followups, 1)
	assert.Equal(t, errorReply, r.followups[0].Content)
}

func TestDispatchPanicBecomesErrorReply(t *testing.T) {
	d := dispatcherWith(t, func(context.Context, *command.Context) error {
		panic("kaboom")
	}, nopLogger())

	r := &fakeResponder{}
	assert.NotPanics(t, func() { d.Handle(context.Background(), r, slashEvent("ping")) })
	require.Len(t, r.responses, 1)
	assert.Equal(t, errorReply, r.responses[0].Data.Content)
}
