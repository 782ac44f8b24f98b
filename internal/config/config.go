package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const productionEnvironment = "production"

// Config is the process configuration, read from the environment.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`
	Environment  string `env:"APP_ENV" envDefault:"development"`
	// Debug is nil unless CUBOID_DEBUG is set.
	Debug        *bool  `env:"CUBOID_DEBUG"`
	DevGuildID   string `env:"CUBOID_DEV_GUILD"`
	CommandsDir  string `env:"CUBOID_COMMANDS_DIR"`
	PresenceText string `env:"PRESENCE_TEXT" envDefault:"with Dark Magicks"`
	LogLevel     string `env:"LOG_LEVEL"`
	LogFile      string `env:"LOG_FILE"`
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, dotenv, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, dotenv, nil
}

// DebugMode reports whether the bot runs in debug mode. An explicit
// CUBOID_DEBUG wins; otherwise every environment but production is debug.
func (c *Config) DebugMode() bool {
	if c.Debug != nil {
		return *c.Debug
	}
	return !strings.EqualFold(c.Environment, productionEnvironment)
}
