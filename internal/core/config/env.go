package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment overrides, applied after the config file.
const (
	EnvWakePhrase   = "TASKTALK_WAKE_PHRASE"
	EnvHistoryLimit = "TASKTALK_HISTORY_LIMIT"
	EnvVoice        = "TASKTALK_VOICE"
	EnvServerAddr   = "TASKTALK_SERVER_ADDR"
)

// LoadDotEnv loads a .env file from the working directory into the process
// environment. A missing file is not an error; existing variables win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

func (c *Config) applyEnv() {
	c.Assistant.WakePhrase = getEnv(EnvWakePhrase, c.Assistant.WakePhrase)
	c.Assistant.HistoryLimit = getEnvInt(EnvHistoryLimit, c.Assistant.HistoryLimit)
	c.Voice.Preferred = getEnv(EnvVoice, c.Voice.Preferred)
	c.Server.Addr = getEnv(EnvServerAddr, c.Server.Addr)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
