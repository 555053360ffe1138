package logger

import (
	"strings"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/techdispatch/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards all output.
type NopLogger = corelogger.NopLogger

// New returns a Logger tagged with the given component. The output format
// follows APP_ENV.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// SetLevel sets the process wide minimum level. Unknown names fall back to info.
func SetLevel(name string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
