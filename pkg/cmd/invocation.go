// Package cmd is the transport-agnostic command core: a command has a name, a
// description and Run(ctx, invocation). How it is registered with a platform and
// how invocations reach it is left to adapters such as internal/discord.
package cmd

import "context"

// Invocation is the input an adapter hands to a command. Data is adapter
// specific; the Discord adapter stores a *command.Context there.
type Invocation struct {
	Args []string
	Data any
}

// Command is identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
