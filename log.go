package eventstore

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the package-level logger every component derives child loggers
// from. It is disabled by default: a library must not write to stdout
// uninvited. Call SetLogger to wire it into an application's own logging
// setup.
var Logger = zerolog.New(io.Discard).With().Timestamp().Logger().Level(zerolog.Disabled)

// SetLogger replaces the package-level logger.
func SetLogger(l zerolog.Logger) {
	Logger = l
}

func componentLogger(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}
