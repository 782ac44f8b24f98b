// Package docs renders the command reference section of README.md.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/bwmarrin/discordgo"
	"github.com/keshon/cuboid/internal/command"
	"github.com/keshon/cuboid/pkg/cmd"
)

// CommandSection renders one markdown entry per command, with its options and
// localized descriptions.
func CommandSection(registry *cmd.Registry) string {
	var buf bytes.Buffer
	for _, c := range registry.All() {
		fmt.Fprintf(&buf, "- **/%s**: %s\n", c.Name(), c.Description())

		def := command.Definition(c)
		if def == nil {
			continue
		}
		for _, o := range def.Options {
			req := ""
			if o.Required {
				req = ", required"
			}
			fmt.Fprintf(&buf, "  - `%s` (%s%s): %s\n", o.Name, optionTypeName(o.Type), req, o.Description)
		}
		if def.DescriptionLocalizations != nil && len(*def.DescriptionLocalizations) > 0 {
			fmt.Fprintf(&buf, "  - translations: %s\n", formatLocales(*def.DescriptionLocalizations))
		}
	}
	return buf.String()
}

// Render executes tmpl with the command section as .CommandSections.
func Render(w io.Writer, registry *cmd.Registry, tmpl string) error {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse README template: %w", err)
	}
	return t.Execute(w, struct{ CommandSections string }{CommandSections: CommandSection(registry)})
}

// UpdateReadme rewrites outPath from the template at tmplPath.
func UpdateReadme(registry *cmd.Registry, tmplPath, outPath string) error {
	tmpl, err := os.ReadFile(tmplPath)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := Render(&out, registry, string(tmpl)); err != nil {
		return err
	}
	return os.WriteFile(outPath, out.Bytes(), 0644)
}

func formatLocales(m map[discordgo.Locale]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %q", k, m[discordgo.Locale(k)])
	}
	return strings.Join(parts, ", ")
}

func optionTypeName(t discordgo.ApplicationCommandOptionType) string {
	switch t {
	case discordgo.ApplicationCommandOptionSubCommand:
		return "subcommand"
	case discordgo.ApplicationCommandOptionSubCommandGroup:
		return "subcommand group"
	case discordgo.ApplicationCommandOptionString:
		return "string"
	case discordgo.ApplicationCommandOptionInteger:
		return "integer"
	case discordgo.ApplicationCommandOptionBoolean:
		return "boolean"
	case discordgo.ApplicationCommandOptionUser:
		return "user"
	case discordgo.ApplicationCommandOptionChannel:
		return "channel"
	case discordgo.ApplicationCommandOptionRole:
		return "role"
	case discordgo.ApplicationCommandOptionMentionable:
		return "mentionable"
	case discordgo.ApplicationCommandOptionNumber:
		return "number"
	case discordgo.ApplicationCommandOptionAttachment:
		return "attachment"
	}
	return "unknown"
}
