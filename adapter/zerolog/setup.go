package zerologadapter

import (
	"github.com/rs/zerolog"

	"github.com/trickstertwo/livelog"
)

// Blank-importing this package makes zerolog_console selectable through
// LOG_FORMAT.
func init() {
	if err := Register(livelog.DefaultFormats()); err != nil {
		panic(err)
	}
}

// Register adds an uncolored zerolog_console format to r.
func Register(r *livelog.Registry) error {
	return r.Register(NewConsole(consoleDefaults()))
}

func consoleDefaults() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{NoColor: true}
}
