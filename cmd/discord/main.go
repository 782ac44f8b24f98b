package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/cuboid/internal/command"
	"github.com/keshon/cuboid/internal/commands"
	"github.com/keshon/cuboid/internal/config"
	"github.com/keshon/cuboid/internal/discord"
	"github.com/keshon/cuboid/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "[ERR]", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, dotenv, err := config.Load()
	if err != nil {
		return err
	}

	root, closer, err := logger.New(logger.Options{
		Level: cfg.LogLevel,
		Debug: cfg.DebugMode(),
		File:  cfg.LogFile,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	log := logger.Child(root, "main")
	if !dotenv {
		log.Debug().Msg("No .env file found, using system environment variables")
	}
	log.Info().Bool("debug", cfg.DebugMode()).Str("env", cfg.Environment).Msg("Starting cuboid bot...")

	var defs fs.FS = commands.Definitions
	dir := commands.Dir
	if cfg.CommandsDir != "" {
		defs, dir = os.DirFS(cfg.CommandsDir), "."
	}
	registry, err := command.Load(defs, dir, commands.Executors(), logger.Child(root, "registry"),
		command.WithCommandLogger(logger.Child(root, "commands")),
	)
	if err != nil {
		return fmt.Errorf("failed to load commands: %w", err)
	}
	log.Info().Int("count", registry.Len()).Msg("Commands loaded")

	bot, err := discord.New(cfg, registry, root)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Msgf("Received signal %s, shutting down...", s)
		cancel()
		err = <-errCh
	case err = <-errCh:
	}
	if err != nil {
		return fmt.Errorf("discord bot error: %w", err)
	}

	log.Info().Msg("Discord bot exited cleanly")
	return nil
}
