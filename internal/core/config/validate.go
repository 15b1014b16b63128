package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tasktalk/internal/core/conversation"
	"github.com/colonyops/tasktalk/internal/core/styles"
)

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	return criterio.ValidateStruct(
		criterio.Run("data_dir", c.DataDir, notEmpty),
		criterio.Run("assistant.wake_phrase", c.Assistant.WakePhrase, notBlank),
		criterio.Run("assistant.history_limit", c.Assistant.HistoryLimit, positive),
		c.validateLexicon(),
		criterio.Run("voice.pitch", c.Voice.Pitch, between(0, 2)),
		criterio.Run("voice.rate", c.Voice.Rate, between(0.1, 10)),
		criterio.Run("server.addr", c.Server.Addr, notEmpty),
		criterio.Run("database.max_open_conns", c.Database.MaxOpenConns, positive),
		criterio.Run("database.max_idle_conns", c.Database.MaxIdleConns, positive),
		criterio.Run("database.busy_timeout", c.Database.BusyTimeout, positive),
		criterio.Run("theme", c.Theme, knownTheme),
	)
}

// ValidateDeep runs Validate and then checks the filesystem: the config file
// must be a readable file if present and the data directory must be a
// directory if it exists.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func (c *Config) validateLexicon() error {
	var errs criterio.FieldErrorsBuilder
	for name, phrases := range c.Assistant.Lexicon {
		field := fmt.Sprintf("assistant.lexicon[%q]", name)
		if !conversation.Intent(name).IsValid() {
			errs = errs.Append(field, fmt.Errorf("unknown intent %q", name))
			continue
		}
		for i, phrase := range phrases {
			if strings.TrimSpace(phrase) == "" {
				errs = errs.Append(fmt.Sprintf("%s[%d]", field, i), fmt.Errorf("phrase cannot be empty"))
			}
		}
	}
	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func isDirectoryOrNotExist(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func notEmpty(s string) error {
	if s == "" {
		return fmt.Errorf("cannot be empty")
	}
	return nil
}

func notBlank(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("cannot be blank")
	}
	return nil
}

func positive(n int) error {
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func between(lo, hi float64) func(float64) error {
	return func(v float64) error {
		if v < lo || v > hi {
			return fmt.Errorf("must be between %g and %g", lo, hi)
		}
		return nil
	}
}

func knownTheme(name string) error {
	if _, ok := styles.Theme(name); !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(styles.Themes(), ", "))
	}
	return nil
}
