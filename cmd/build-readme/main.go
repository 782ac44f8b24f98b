// Command build-readme regenerates README.md from README.md.tmpl and the
// shipped command modules.
package main

import (
	"fmt"
	"os"

	"github.com/keshon/cuboid/internal/command"
	"github.com/keshon/cuboid/internal/commands"
	"github.com/keshon/cuboid/internal/docs"
	"github.com/keshon/cuboid/internal/logger"
)

func main() {
	root, _, err := logger.New(logger.Options{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Child(root, "build-readme")

	registry, err := command.Load(commands.Definitions, commands.Dir, commands.Executors(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load commands")
	}
	if err := docs.UpdateReadme(registry, "README.md.tmpl", "README.md"); err != nil {
		log.Fatal().Err(err).Msg("Failed to update README")
	}
	log.Info().Int("commands", registry.Len()).Msg("README.md updated")
}
