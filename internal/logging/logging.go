package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// LevelFor maps a -v count to a log level. Without -v only warnings are shown.
func LevelFor(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// SetVerbosity adjusts the global level after flags have been parsed.
func SetVerbosity(verbosity int) {
	zerolog.SetGlobalLevel(LevelFor(verbosity))
}

// New builds the console logger written to w. Colour is left to the caller, which knows
// whether w is a terminal.
func New(w io.Writer, verbosity int, color bool) zerolog.Logger {
	SetVerbosity(verbosity)

	console := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.Kitchen,
		NoColor:    !color,
	}
	logger := zerolog.New(console).With().Timestamp().Logger()
	if verbosity >= 2 {
		logger = logger.With().Caller().Logger()
	}
	logger.Debug().Int("verbosity", verbosity).Msg("logger initialized")
	return logger
}
