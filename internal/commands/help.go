package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/internal/command"
)

// Help lists registered commands, or describes one when the command option
// is given.
func Help(_ context.Context, c *command.Context) error {
	all := c.Bot.Commands()

	if opt, ok := c.Interaction.Option("command"); ok {
		name := strings.TrimPrefix(strings.TrimSpace(opt.StringValue()), "/")
		for _, cmd := range all {
			if cmd.Name() == name {
				return c.Interaction.ReplyEmbed(&discordgo.MessageEmbed{
					Title:       "/" + cmd.Name(),
					Description: cmd.Description(),
					Color:       EmbedColor,
				}, true)
			}
		}
		return c.Interaction.ReplyEphemeral(fmt.Sprintf("Unknown command `%s`.", name))
	}

	var sb strings.Builder
	for _, cmd := range all {
		fmt.Fprintf(&sb, "`/%s` %s\n", cmd.Name(), cmd.Description())
	}
	return c.Interaction.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Commands",
		Description: sb.String(),
		Color:       EmbedColor,
	}, true)
}
