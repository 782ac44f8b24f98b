package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/pkg/cmd"
	"github.com/rs/zerolog"
)

var (
	ErrMissingSchema   = errors.New("command has no schema")
	ErrMissingExecutor = errors.New("command has no executor")
)

// Executor runs a slash command.
type Executor func(ctx context.Context, c *Context) error

// SlashProvider is implemented by commands that register as chat-input
// application commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// BotContext is the part of the running bot commands may reach.
type BotContext interface {
	Logger() zerolog.Logger
	DevelopmentGuild() *discordgo.Guild
	Commands() []cmd.Command
}

// Context is what the Discord adapter hands to an Executor.
type Context struct {
	Bot         BotContext
	Interaction *Interaction
}

// Descriptor pairs an application command schema with its executor. The
// schema is copied on the way in and on the way out, so it never changes once
// the descriptor exists.
type Descriptor struct {
	def  *discordgo.ApplicationCommand
	exec Executor
}

// NewDescriptor validates def and exec and returns the descriptor.
func NewDescriptor(def *discordgo.ApplicationCommand, exec Executor) (*Descriptor, error) {
	if def == nil || def.Name == "" || def.Description == "" {
		return nil, ErrMissingSchema
	}
	if exec == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingExecutor, def.Name)
	}
	d := &Descriptor{def: CloneDefinition(def), exec: exec}
	if d.def.Type == 0 {
		d.def.Type = discordgo.ChatApplicationCommand
	}
	return d, nil
}

func (d *Descriptor) Name() string        { return d.def.Name }
func (d *Descriptor) Description() string { return d.def.Description }

// SlashDefinition returns a copy of the schema.
func (d *Descriptor) SlashDefinition() *discordgo.ApplicationCommand {
	return CloneDefinition(d.def)
}

func (d *Descriptor) Run(ctx context.Context, inv *cmd.Invocation) error {
	c, ok := inv.Data.(*Context)
	if !ok {
		return fmt.Errorf("command %s: unexpected invocation data %T", d.def.Name, inv.Data)
	}
	return d.exec(ctx, c)
}

// Definition extracts the schema from a registered command, looking through
// middleware wrappers. It returns nil for commands without one.
func Definition(c cmd.Command) *discordgo.ApplicationCommand {
	if slash, ok := cmd.Root(c).(SlashProvider); ok {
		return slash.SlashDefinition()
	}
	return nil
}

// CloneDefinition deep-copies an application command schema.
func CloneDefinition(def *discordgo.ApplicationCommand) *discordgo.ApplicationCommand {
	if def == nil {
		return nil
	}
	out := *def
	out.NameLocalizations = cloneLocalizationsPtr(def.NameLocalizations)
	out.DescriptionLocalizations = cloneLocalizationsPtr(def.DescriptionLocalizations)
	if def.DefaultMemberPermissions != nil {
		v := *def.DefaultMemberPermissions
		out.DefaultMemberPermissions = &v
	}
	if def.DMPermission != nil {
		v := *def.DMPermission
		out.DMPermission = &v
	}
	if def.NSFW != nil {
		v := *def.NSFW
		out.NSFW = &v
	}
	out.Options = cloneOptions(def.Options)
	return &out
}

func cloneOptions(opts []*discordgo.ApplicationCommandOption) []*discordgo.ApplicationCommandOption {
	if opts == nil {
		return nil
	}
	out := make([]*discordgo.ApplicationCommandOption, len(opts))
	for i, o := range opts {
		if o == nil {
			continue
		}
		c := *o
		c.NameLocalizations = cloneLocalizations(o.NameLocalizations)
		c.DescriptionLocalizations = cloneLocalizations(o.DescriptionLocalizations)
		if o.ChannelTypes != nil {
			c.ChannelTypes = append([]discordgo.ChannelType(nil), o.ChannelTypes...)
		}
		if o.MinValue != nil {
			v := *o.MinValue
			c.MinValue = &v
		}
		if o.MinLength != nil {
			v := *o.MinLength
			c.MinLength = &v
		}
		if o.Choices != nil {
			c.Choices = make([]*discordgo.ApplicationCommandOptionChoice, len(o.Choices))
			for j, ch := range o.Choices {
				if ch == nil {
					continue
				}
				cc := *ch
				cc.NameLocalizations = cloneLocalizations(ch.NameLocalizations)
				c.Choices[j] = &cc
			}
		}
		c.Options = cloneOptions(o.Options)
		out[i] = &c
	}
	return out
}

func cloneLocalizations(m map[discordgo.Locale]string) map[discordgo.Locale]string {
	if m == nil {
		return nil
	}
	out := make(map[discordgo.Locale]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneLocalizationsPtr(m *map[discordgo.Locale]string) *map[discordgo.Locale]string {
	if m == nil {
		return nil
	}
	c := cloneLocalizations(*m)
	return &c
}
