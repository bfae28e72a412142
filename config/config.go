package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds every setting the bot needs at startup.
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	Discord       DiscordConfig       `yaml:"discord"`
	Kaggle        KaggleConfig        `yaml:"kaggle"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// DiscordConfig holds Discord configuration.
type DiscordConfig struct {
	Token string `yaml:"token"`
	// GuildID pins the bot to one guild. When empty, the first guild the
	// gateway reports is used.
	GuildID string `yaml:"guild_id"`
	// CommandPrefix is the character(s) commands start with, "!" by default.
	CommandPrefix string `yaml:"command_prefix"`
	// CompetitionsChannel is the name of the channel competition threads are
	// created under.
	CompetitionsChannel string `yaml:"competitions_channel"`
}

// KaggleConfig holds settings for the Kaggle CLI integration.
type KaggleConfig struct {
	// Binary is the kaggle executable, resolved via PATH when bare.
	Binary string `yaml:"binary"`
	// DataDir is where definition documents and leaderboard downloads live.
	DataDir string `yaml:"data_dir"`
	// FetchesPerMinute caps leaderboard downloads across all competitions.
	FetchesPerMinute int `yaml:"fetches_per_minute"`
}

// ObservabilityConfig holds configuration for observability components.
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	LogLevel       string `yaml:"log_level"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file, falling back to
// environment variables when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadConfigFromEnv() (*Config, error) {
	fetchesPerMinute := 0
	if v := os.Getenv("KAGGLE_FETCHES_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid KAGGLE_FETCHES_PER_MINUTE: %w", err)
		}
		fetchesPerMinute = n
	}

	cfg := &Config{
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Discord: DiscordConfig{
			Token:               os.Getenv("DISCORD_TOKEN"),
			GuildID:             os.Getenv("DISCORD_GUILD_ID"),
			CommandPrefix:       os.Getenv("DISCORD_COMMAND_PREFIX"),
			CompetitionsChannel: os.Getenv("DISCORD_COMPETITIONS_CHANNEL"),
		},
		Kaggle: KaggleConfig{
			Binary:           os.Getenv("KAGGLE_BINARY"),
			DataDir:          os.Getenv("KAGGLE_DATA_DIR"),
			FetchesPerMinute: fetchesPerMinute,
		},
		Observability: ObservabilityConfig{
			MetricsAddress: os.Getenv("METRICS_ADDRESS"),
			LogLevel:       os.Getenv("LOG_LEVEL"),
			Environment:    os.Getenv("ENVIRONMENT"),
		},
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Discord.CommandPrefix == "" {
		c.Discord.CommandPrefix = "!"
	}
	if c.Discord.CompetitionsChannel == "" {
		c.Discord.CompetitionsChannel = "competitions"
	}
	if c.Kaggle.Binary == "" {
		c.Kaggle.Binary = "kaggle"
	}
	if c.Kaggle.DataDir == "" {
		c.Kaggle.DataDir = "data"
	}
	if c.Kaggle.FetchesPerMinute <= 0 {
		c.Kaggle.FetchesPerMinute = 20
	}
	if c.Observability.MetricsAddress == "" {
		c.Observability.MetricsAddress = ":8090"
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
}

func (c *Config) validate() error {
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres DSN is required")
	}
	if c.Discord.Token == "" {
		return fmt.Errorf("discord token is required")
	}
	return nil
}
