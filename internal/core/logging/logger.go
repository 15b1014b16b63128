package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component returns the global logger tagged with a component name and the
// context hook installed.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger().Hook(ContextHook{})
}
