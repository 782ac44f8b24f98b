package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// normalizedCommand is the part of an application command both sides agree
// on. Remote-only fields (IDs, version, application) are left out.
type normalizedCommand struct {
	Type                     discordgo.ApplicationCommandType `json:"type"`
	Name                     string                           `json:"name"`
	NameLocalizations        map[discordgo.Locale]string      `json:"name_localizations,omitempty"`
	Description              string                           `json:"description"`
	DescriptionLocalizations map[discordgo.Locale]string      `json:"description_localizations,omitempty"`
	DefaultMemberPermissions *int64                           `json:"default_member_permissions,omitempty"`
	DMPermission             bool                             `json:"dm_permission"`
	NSFW                     bool                             `json:"nsfw"`
	Options                  []normalizedOption               `json:"options,omitempty"`
}

type normalizedOption struct {
	Type                     discordgo.ApplicationCommandOptionType `json:"type"`
	Name                     string                                 `json:"name"`
	NameLocalizations        map[discordgo.Locale]string            `json:"name_localizations,omitempty"`
	Description              string                                 `json:"description"`
	DescriptionLocalizations map[discordgo.Locale]string            `json:"description_localizations,omitempty"`
	Required                 bool                                   `json:"required"`
	Autocomplete             bool                                   `json:"autocomplete"`
	ChannelTypes             []discordgo.ChannelType                `json:"channel_types,omitempty"`
	MinValue                 *float64                               `json:"min_value,omitempty"`
	MaxValue                 float64                                `json:"max_value,omitempty"`
	MinLength                *int                                   `json:"min_length,omitempty"`
	MaxLength                int                                    `json:"max_length,omitempty"`
	Choices                  []normalizedChoice                     `json:"choices,omitempty"`
	Options                  []normalizedOption                     `json:"options,omitempty"`
}

type normalizedChoice struct {
	Name              string                      `json:"name"`
	NameLocalizations map[discordgo.Locale]string `json:"name_localizations,omitempty"`
	Value             any                         `json:"value"`
}

// normalizeDefinition maps a command to its comparable form. Unset DM
// permission means allowed, an unset type means chat input, and empty
// localization maps equal missing ones.
func normalizeDefinition(c *discordgo.ApplicationCommand) normalizedCommand {
	n := normalizedCommand{
		Type:                     c.Type,
		Name:                     c.Name,
		Description:              c.Description,
		DefaultMemberPermissions: c.DefaultMemberPermissions,
		DMPermission:             c.DMPermission == nil || *c.DMPermission,
		NSFW:                     c.NSFW != nil && *c.NSFW,
		Options:                  normalizeOptions(c.Options),
	}
	if n.Type == 0 {
		n.Type = discordgo.ChatApplicationCommand
	}
	if c.NameLocalizations != nil {
		n.NameLocalizations = nonEmpty(*c.NameLocalizations)
	}
	if c.DescriptionLocalizations != nil {
		n.DescriptionLocalizations = nonEmpty(*c.DescriptionLocalizations)
	}
	return n
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []normalizedOption {
	if len(opts) == 0 {
		return nil
	}
	out := make([]normalizedOption, 0, len(opts))
	for _, o := range opts {
		if o == nil {
			continue
		}
		n := normalizedOption{
			Type:                     o.Type,
			Name:                     o.Name,
			NameLocalizations:        nonEmpty(o.NameLocalizations),
			Description:              o.Description,
			DescriptionLocalizations: nonEmpty(o.DescriptionLocalizations),
			Required:                 o.Required,
			Autocomplete:             o.Autocomplete,
			MinValue:                 o.MinValue,
			MaxValue:                 o.MaxValue,
			MinLength:                o.MinLength,
			MaxLength:                o.MaxLength,
			Options:                  normalizeOptions(o.Options),
		}
		if len(o.ChannelTypes) > 0 {
			n.ChannelTypes = append([]discordgo.ChannelType(nil), o.ChannelTypes...)
			sort.Slice(n.ChannelTypes, func(i, j int) bool { return n.ChannelTypes[i] < n.ChannelTypes[j] })
		}
		for _, ch := range o.Choices {
			if ch == nil {
				continue
			}
			n.Choices = append(n.Choices, normalizedChoice{
				Name:              ch.Name,
				NameLocalizations: nonEmpty(ch.NameLocalizations),
				Value:             normalizeChoiceValue(ch.Value),
			})
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// normalizeChoiceValue makes numbers decoded from YAML (int) and from the
// API (float64) compare equal.
func normalizeChoiceValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case float32:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return v
}

func nonEmpty(m map[discordgo.Locale]string) map[discordgo.Locale]string {
	if len(m) == 0 {
		return nil
	}
	return m
}

// definitionJSON renders the normalized form of c, used for hashing and for
// debug output.
func definitionJSON(c *discordgo.ApplicationCommand) []byte {
	data, _ := json.Marshal(normalizeDefinition(c))
	return data
}

// hashCommand returns a deterministic SHA-1 of the normalized definition.
func hashCommand(c *discordgo.ApplicationCommand) string {
	sum := sha1.Sum(definitionJSON(c))
	return fmt.Sprintf("%x", sum)
}

// definitionsEqual reports whether two commands would look the same to a user.
func definitionsEqual(local, remote *discordgo.ApplicationCommand) bool {
	return hashCommand(local) == hashCommand(remote)
}
