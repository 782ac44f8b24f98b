package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/internal/command"
	"github.com/keshon/cuboid/pkg/cmd"
	"github.com/rs/zerolog"
)

const errorReply = "There was an error while executing this command!"

// Dispatcher routes chat-input interactions to registered commands.
type Dispatcher struct {
	registry *cmd.Registry
	bot      command.BotContext
	log      zerolog.Logger
}

func NewDispatcher(registry *cmd.Registry, bot command.BotContext, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, bot: bot, log: log}
}

// Handle runs the command named by e. Interactions for unknown commands are
// logged and left unanswered. A failed command gets exactly one ephemeral
// error message: a follow-up when it had already replied or deferred, the
// initial reply otherwise.
func (d *Dispatcher) Handle(ctx context.Context, s command.Responder, e *discordgo.InteractionCreate) {
	if e.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := e.ApplicationCommandData()
	if data.CommandType != discordgo.ChatApplicationCommand {
		return
	}

	c, ok := d.registry.Get(data.Name)
	if !ok {
		d.log.Error().Str("command", data.Name).Msgf("Received interaction for unrecognized command %s", data.Name)
		return
	}

	in := command.NewInteraction(s, e)
	err := c.Run(ctx, &cmd.Invocation{Data: &command.Context{Bot: d.bot, Interaction: in}})
	if err == nil {
		return
	}

	evt := d.log.Error().Err(err).Str("command", data.Name).Str("guild", e.GuildID)
	if u := in.User(); u != nil {
		evt = evt.Str("user_id", u.ID)
	}
	evt.Msg("Error while executing command")

	if in.Responded() {
		err = in.FollowUp(errorReply, true)
	} else {
		err = in.ReplyEphemeral(errorReply)
	}
	if err != nil {
		d.log.Error().Err(err).Str("command", data.Name).Msg("Failed to send error reply")
	}
}
