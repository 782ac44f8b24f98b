package command

import (
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrAlreadyResponded = errors.New("interaction already has a response")
	ErrNotResponded     = errors.New("interaction has no response to follow up")
)

// Responder is the part of *discordgo.Session used to answer interactions.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Interaction wraps an incoming interaction and remembers whether it has
// been answered, so callers can pick between a reply and a follow-up.
type Interaction struct {
	responder Responder
	event     *discordgo.InteractionCreate

	mu       sync.Mutex
	replied  bool
	deferred bool
}

func NewInteraction(r Responder, e *discordgo.InteractionCreate) *Interaction {
	return &Interaction{responder: r, event: e}
}

func (i *Interaction) Event() *discordgo.InteractionCreate { return i.event }
func (i *Interaction) GuildID() string                     { return i.event.GuildID }

// CommandName is the invoked application command name, or "" for other
// interaction types.
func (i *Interaction) CommandName() string {
	if i.event.Type != discordgo.InteractionApplicationCommand {
		return ""
	}
	return i.event.ApplicationCommandData().Name
}

// User returns the invoking user in guilds and DMs alike.
func (i *Interaction) User() *discordgo.User {
	if i.event.Member != nil && i.event.Member.User != nil {
		return i.event.Member.User
	}
	return i.event.User
}

// Option returns the top-level option called name.
func (i *Interaction) Option(name string) (*discordgo.ApplicationCommandInteractionDataOption, bool) {
	if i.event.Type != discordgo.InteractionApplicationCommand {
		return nil, false
	}
	for _, o := range i.event.ApplicationCommandData().Options {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

func (i *Interaction) Replied() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.replied
}

func (i *Interaction) Deferred() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.deferred
}

// Responded reports whether a reply or deferral was already sent.
func (i *Interaction) Responded() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.replied || i.deferred
}

func (i *Interaction) Reply(content string) error {
	return i.respond(discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{
		Content: content,
	})
}

func (i *Interaction) ReplyEphemeral(content string) error {
	return i.respond(discordgo.InteractionResponseChannelMessageWithSource, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func (i *Interaction) ReplyEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return i.respond(discordgo.InteractionResponseChannelMessageWithSource, data)
}

// Defer acknowledges the interaction; the answer must come as a follow-up.
func (i *Interaction) Defer(ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return i.respond(discordgo.InteractionResponseDeferredChannelMessageWithSource, data)
}

// FollowUp sends an additional message after a reply or deferral.
func (i *Interaction) FollowUp(content string, ephemeral bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.replied && !i.deferred {
		return ErrNotResponded
	}
	params := &discordgo.WebhookParams{Content: content}
	if ephemeral {
		params.Flags = discordgo.MessageFlagsEphemeral
	}
	if _, err := i.responder.FollowupMessageCreate(i.event.Interaction, true, params); err != nil {
		return err
	}
	i.replied = true
	return nil
}

func (i *Interaction) respond(kind discordgo.InteractionResponseType, data *discordgo.InteractionResponseData) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.replied || i.deferred {
		return ErrAlreadyResponded
	}
	err := i.responder.InteractionRespond(i.event.Interaction, &discordgo.InteractionResponse{
		Type: kind,
		Data: data,
	})
	if err != nil {
		return err
	}
	if kind == discordgo.InteractionResponseDeferredChannelMessageWithSource {
		i.deferred = true
	} else {
		i.replied = true
	}
	return nil
}
