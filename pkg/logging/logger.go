package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogging initializes logging
func InitLogging(level, format string) {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(parseLevel(level))

	var writer io.Writer = os.Stdout
	if !strings.EqualFold(format, "json") {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Caller().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debugf logs debug level messages
func Debugf(format string, v ...interface{}) {
	log.Debug().CallerSkipFrame(1).Msgf(format, v...)
}

// Infof logs info level messages
func Infof(format string, v ...interface{}) {
	log.Info().CallerSkipFrame(1).Msgf(format, v...)
}

// Warnf logs warning level messages
func Warnf(format string, v ...interface{}) {
	log.Warn().CallerSkipFrame(1).Msgf(format, v...)
}

// Errorf logs error level messages
func Errorf(format string, v ...interface{}) {
	log.Error().CallerSkipFrame(1).Msgf(format, v...)
}

// Fatalf logs a fatal message and exits the process
func Fatalf(format string, v ...interface{}) {
	log.Fatal().CallerSkipFrame(1).Msgf(format, v...)
}
