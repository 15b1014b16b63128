// Package config handles configuration loading and validation for tasktalk.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/tasktalk/internal/core/chatlog"
	"github.com/colonyops/tasktalk/internal/core/conversation"
	"github.com/colonyops/tasktalk/internal/core/speech"
	"github.com/colonyops/tasktalk/internal/core/styles"
)

// Config holds the application configuration.
type Config struct {
	Assistant AssistantConfig      `yaml:"assistant"`
	Voice     speech.VoiceSettings `yaml:"voice"`
	Server    ServerConfig         `yaml:"server"`
	Database  DatabaseConfig       `yaml:"database"`
	Theme     string               `yaml:"theme"`
	DataDir   string               `yaml:"-"` // set by caller, not from config file
}

// AssistantConfig tunes the dialogue.
type AssistantConfig struct {
	WakePhrase   string              `yaml:"wake_phrase"`
	HistoryLimit int                 `yaml:"history_limit"`
	Lexicon      map[string][]string `yaml:"lexicon"` // intent name -> trigger phrases
}

// ServerConfig holds settings for `tasktalk serve`.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"` // empty allows any origin
}

// DatabaseConfig holds SQLite connection pool settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Assistant: AssistantConfig{
			WakePhrase:   conversation.DefaultWakePhrase,
			HistoryLimit: chatlog.DefaultLimit,
		},
		Voice: speech.DefaultVoiceSettings(),
		Server: ServerConfig{
			Addr: "127.0.0.1:7777",
		},
		Database: DatabaseConfig{
			MaxOpenConns: 2,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
		Theme: styles.DefaultTheme,
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Assistant.WakePhrase == "" {
		c.Assistant.WakePhrase = defaults.Assistant.WakePhrase
	}
	if c.Assistant.HistoryLimit == 0 {
		c.Assistant.HistoryLimit = defaults.Assistant.HistoryLimit
	}
	if c.Voice.Pitch == 0 {
		c.Voice.Pitch = defaults.Voice.Pitch
	}
	if c.Voice.Rate == 0 {
		c.Voice.Rate = defaults.Voice.Rate
	}
	if c.Voice.Lang == "" {
		c.Voice.Lang = defaults.Voice.Lang
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.Theme == "" {
		c.Theme = defaults.Theme
	}
}

// Lexicon builds the phrase table from the defaults and any overrides.
func (c *Config) Lexicon() conversation.Lexicon {
	overrides := make(map[conversation.Intent][]string, len(c.Assistant.Lexicon))
	for name, phrases := range c.Assistant.Lexicon {
		overrides[conversation.Intent(name)] = phrases
	}

	return conversation.DefaultLexicon().
		WithWakePhrase(c.Assistant.WakePhrase).
		WithPhrases(overrides)
}

// DatabaseFile returns the path of the SQLite database.
func (c *Config) DatabaseFile() string {
	return filepath.Join(c.DataDir, "tasktalk.db")
}
