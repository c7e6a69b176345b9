package internal

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger builds the application logger. Logs go to stderr so they never
// interleave with report output on stdout. A TTY gets the human console
// writer, everything else gets JSON lines.
func NewLogger(verbose, quiet bool) zerolog.Logger {
	var out io.Writer = os.Stderr
	if isatty.IsTerminal(os.Stderr.Fd()) {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.ErrorLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
