// Package logging configures the global zerolog logger for the command-line
// tool. Library packages never log.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cocosip/go-thumb-codec/internal/oops"
)

func init() {
	zerolog.ErrorStackMarshaler = oops.ZerologStackMarshaler
	log.Logger = log.Output(newConsoleWriter(os.Stderr, false))
}

// Configure sets the global level and drops colors when requested or when
// stderr is not a terminal.
func Configure(level zerolog.Level, noColor bool) {
	zerolog.SetGlobalLevel(level)
	noColor = noColor || !isatty.IsTerminal(os.Stderr.Fd())
	log.Logger = log.Output(newConsoleWriter(os.Stderr, noColor))
}

func newConsoleWriter(out io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: out, NoColor: noColor, TimeFormat: time.Kitchen}
}

func Debug() *zerolog.Event {
	return log.Debug().Timestamp().Stack()
}

func Info() *zerolog.Event {
	return log.Info().Timestamp().Stack()
}

func Error() *zerolog.Event {
	return log.Error().Timestamp().Stack()
}
