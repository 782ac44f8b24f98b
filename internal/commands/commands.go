// Package commands holds the slash commands shipped with the bot: their
// schemas live as YAML modules under slash/, their executors here.
package commands

import (
	"embed"

	"github.com/keshon/cuboid/internal/command"
)

// EmbedColor is the accent color of embeds sent by commands.
const EmbedColor = 0xb01e66

// Dir is the directory inside Definitions holding the modules.
const Dir = "slash"

//go:embed slash
var Definitions embed.FS

// Executors maps handler keys to executors.
func Executors() map[string]command.Executor {
	return map[string]command.Executor{
		"ping": Ping,
		"help": Help,
	}
}
