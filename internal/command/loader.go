package command

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/pkg/cmd"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// definitionFile is one descriptor module on disk.
type definitionFile struct {
	Name                     string            `yaml:"name"`
	Handler                  string            `yaml:"handler"`
	Description              string            `yaml:"description"`
	NameLocalizations        map[string]string `yaml:"name_localizations"`
	DescriptionLocalizations map[string]string `yaml:"description_localizations"`
	DefaultMemberPermissions *int64            `yaml:"default_member_permissions"`
	DMPermission             *bool             `yaml:"dm_permission"`
	NSFW                     *bool             `yaml:"nsfw"`
	Options                  []optionFile      `yaml:"options"`
}

type optionFile struct {
	Type                     string            `yaml:"type"`
	Name                     string            `yaml:"name"`
	Description              string            `yaml:"description"`
	NameLocalizations        map[string]string `yaml:"name_localizations"`
	DescriptionLocalizations map[string]string `yaml:"description_localizations"`
	Required                 bool              `yaml:"required"`
	Autocomplete             bool              `yaml:"autocomplete"`
	ChannelTypes             []int             `yaml:"channel_types"`
	MinValue                 *float64          `yaml:"min_value"`
	MaxValue                 float64           `yaml:"max_value"`
	MinLength                *int              `yaml:"min_length"`
	MaxLength                int               `yaml:"max_length"`
	Choices                  []choiceFile      `yaml:"choices"`
	Options                  []optionFile      `yaml:"options"`
}

type choiceFile struct {
	Name              string            `yaml:"name"`
	NameLocalizations map[string]string `yaml:"name_localizations"`
	Value             any               `yaml:"value"`
}

var optionTypes = map[string]discordgo.ApplicationCommandOptionType{
	"sub_command":       discordgo.ApplicationCommandOptionSubCommand,
	"sub_command_group": discordgo.ApplicationCommandOptionSubCommandGroup,
	"string":            discordgo.ApplicationCommandOptionString,
	"integer":           discordgo.ApplicationCommandOptionInteger,
	"boolean":           discordgo.ApplicationCommandOptionBoolean,
	"user":              discordgo.ApplicationCommandOptionUser,
	"channel":           discordgo.ApplicationCommandOptionChannel,
	"role":              discordgo.ApplicationCommandOptionRole,
	"mentionable":       discordgo.ApplicationCommandOptionMentionable,
	"number":            discordgo.ApplicationCommandOptionNumber,
	"attachment":        discordgo.ApplicationCommandOptionAttachment,
}

// Load builds the registry from the descriptor modules under dir in fsys.
// Every *.yaml or *.yml file is one module; its executor is looked up in
// executors by the module's handler key, falling back to its name.
//
// A module that cannot be decoded, lacks a schema or has no executor is
// skipped with a warning. Two modules declaring the same name abort loading.
// Every descriptor is wrapped with WithRecover and then mws. Executors no
// module refers to are reported with a warning.
func Load(fsys fs.FS, dir string, executors map[string]Executor, log zerolog.Logger, mws ...cmd.Middleware) (*cmd.Registry, error) {
	pattern := path.Join(dir, "**", "*.{yaml,yml}")
	files, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list command modules in %q: %w", dir, err)
	}
	sort.Strings(files)

	registry := cmd.NewRegistry()
	origin := make(map[string]string, len(files))
	used := make(map[string]bool, len(executors))

	for _, file := range files {
		def, handler, err := readDefinition(fsys, file)
		if err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Ignoring invalid command module")
			continue
		}

		d, err := NewDescriptor(def, executors[handler])
		if err != nil {
			log.Warn().Err(err).Str("file", file).Msg("Ignoring invalid command module")
			continue
		}

		if prev, dup := origin[d.Name()]; dup {
			return nil, fmt.Errorf("%w: %s declared in %s and %s", cmd.ErrDuplicateCommand, d.Name(), prev, file)
		}
		if err := registry.Register(cmd.Apply(d, append([]cmd.Middleware{WithRecover()}, mws...)...)); err != nil {
			return nil, err
		}
		origin[d.Name()] = file
		used[handler] = true
		log.Debug().Str("command", d.Name()).Str("file", file).Msg("Loaded command")
	}

	unused := make([]string, 0, len(executors))
	for key := range executors {
		if !used[key] {
			unused = append(unused, key)
		}
	}
	sort.Strings(unused)
	for _, key := range unused {
		log.Warn().Str("handler", key).Msgf("No command module uses executor %q, it will not be registered", key)
	}

	return registry, nil
}

func readDefinition(fsys fs.FS, file string) (*discordgo.ApplicationCommand, string, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return nil, "", err
	}

	var f definitionFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, "", fmt.Errorf("failed to decode: %w", err)
	}

	opts, err := convertOptions(f.Options)
	if err != nil {
		return nil, "", err
	}

	def := &discordgo.ApplicationCommand{
		Type:                     discordgo.ChatApplicationCommand,
		Name:                     strings.TrimSpace(f.Name),
		Description:              strings.TrimSpace(f.Description),
		DefaultMemberPermissions: f.DefaultMemberPermissions,
		DMPermission:             f.DMPermission,
		NSFW:                     f.NSFW,
		Options:                  opts,
	}
	if len(f.NameLocalizations) > 0 {
		m := locales(f.NameLocalizations)
		def.NameLocalizations = &m
	}
	if len(f.DescriptionLocalizations) > 0 {
		m := locales(f.DescriptionLocalizations)
		def.DescriptionLocalizations = &m
	}

	handler := f.Handler
	if handler == "" {
		handler = def.Name
	}
	return def, handler, nil
}

func convertOptions(in []optionFile) ([]*discordgo.ApplicationCommandOption, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]*discordgo.ApplicationCommandOption, 0, len(in))
	for _, o := range in {
		kind, ok := optionTypes[strings.ToLower(o.Type)]
		if !ok {
			return nil, fmt.Errorf("option %q: unknown type %q", o.Name, o.Type)
		}
		sub, err := convertOptions(o.Options)
		if err != nil {
			return nil, err
		}
		opt := &discordgo.ApplicationCommandOption{
			Type:         kind,
			Name:         o.Name,
			Description:  o.Description,
			Required:     o.Required,
			Autocomplete: o.Autocomplete,
			MinValue:     o.MinValue,
			MaxValue:     o.MaxValue,
			MinLength:    o.MinLength,
			MaxLength:    o.MaxLength,
			Options:      sub,
		}
		if len(o.NameLocalizations) > 0 {
			opt.NameLocalizations = locales(o.NameLocalizations)
		}
		if len(o.DescriptionLocalizations) > 0 {
			opt.DescriptionLocalizations = locales(o.DescriptionLocalizations)
		}
		for _, ct := range o.ChannelTypes {
			opt.ChannelTypes = append(opt.ChannelTypes, discordgo.ChannelType(ct))
		}
		for _, c := range o.Choices {
			choice := &discordgo.ApplicationCommandOptionChoice{Name: c.Name, Value: c.Value}
			if len(c.NameLocalizations) > 0 {
				choice.NameLocalizations = locales(c.NameLocalizations)
			}
			opt.Choices = append(opt.Choices, choice)
		}
		out = append(out, opt)
	}
	return out, nil
}

func locales(in map[string]string) map[discordgo.Locale]string {
	out := make(map[discordgo.Locale]string, len(in))
	for k, v := range in {
		out[discordgo.Locale(k)] = v
	}
	return out
}
