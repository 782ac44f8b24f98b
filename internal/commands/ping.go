package commands

import (
	"context"

	"github.com/keshon/cuboid/internal/command"
)

func Ping(_ context.Context, c *command.Context) error {
	return c.Interaction.Reply("Pong!")
}
