// Package logging configures the global zerolog logger and the startup
// summary event every binary emits.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LevelEnvVar names the variable holding the log level.
const LevelEnvVar = "GEMLOOKUP_LOG_LEVEL"

// Init initializes the global logger with configuration from environment variables.
// GEMLOOKUP_LOG_LEVEL controls the log level: debug, info, warn, error (default: info)
func Init() {
	InitWithWriter(os.Stderr)
}

// InitWithWriter is Init with console output sent to w. Stdio binaries pass
// os.Stderr so stdout stays reserved for protocol traffic.
func InitWithWriter(w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(os.Getenv(LevelEnvVar)))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetVerbose forces debug level, overriding the environment.
func SetVerbose() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}
