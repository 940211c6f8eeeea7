package config

import (
	"fmt"
	"os"
	"time"
)

const (
	defaultChannelPrefix = "votes-"
	defaultTallyInterval = 5 * time.Minute
)

type Discord struct {
	Token   string
	AppID   string
	GuildID string
}

type Database struct {
	Name     string
	User     string
	Password string
	Host     string
	Port     string
}

func (d Database) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type Config struct {
	Discord       Discord
	Database      Database
	ChannelPrefix string
	TallyInterval time.Duration
	// HTTPAddr enables the read-only status API when non-empty.
	HTTPAddr string
}

// Load reads the configuration from the environment and validates it.
// Callers load .env files (godotenv) before calling Load.
func Load() (*Config, error) {
	cfg := &Config{
		Discord: Discord{
			Token:   os.Getenv("DISCORD_TOKEN"),
			AppID:   os.Getenv("DISCORD_APP_ID"),
			GuildID: os.Getenv("DISCORD_GUILD_ID"),
		},
		Database: Database{
			Name:     os.Getenv("POSTGRES_DB"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     os.Getenv("POSTGRES_PORT"),
		},
		ChannelPrefix: defaultChannelPrefix,
		TallyInterval: defaultTallyInterval,
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
	}

	if prefix := os.Getenv("VOTE_CHANNEL_PREFIX"); prefix != "" {
		cfg.ChannelPrefix = prefix
	}
	if raw := os.Getenv("TALLY_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TALLY_INTERVAL %q: %w", raw, err)
		}
		if interval <= 0 {
			return nil, fmt.Errorf("TALLY_INTERVAL must be positive, got %q", raw)
		}
		cfg.TallyInterval = interval
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}
	if c.Discord.AppID == "" {
		return fmt.Errorf("DISCORD_APP_ID is required")
	}
	if c.Discord.GuildID == "" {
		return fmt.Errorf("DISCORD_GUILD_ID is required")
	}
	for key, value := range map[string]string{
		"POSTGRES_DB":       c.Database.Name,
		"POSTGRES_USER":     c.Database.User,
		"POSTGRES_PASSWORD": c.Database.Password,
		"POSTGRES_HOST":     c.Database.Host,
		"POSTGRES_PORT":     c.Database.Port,
	} {
		if value == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	return nil
}
