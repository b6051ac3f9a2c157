// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Formats accepted by Setup.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
	FormatAuto    = "auto"
)

// Setup points the global logger at stderr.
func Setup(level, format string) error {
	return SetupWriter(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()), level, format)
}

// SetupWriter configures the global logger on w. tty decides what "auto"
// resolves to and whether console output is colored.
func SetupWriter(w io.Writer, tty bool, level, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(lvl)

	switch strings.ToLower(format) {
	case FormatJSON:
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	case FormatConsole, "":
		log.Logger = log.Output(consoleWriter(w, tty))
	case FormatAuto:
		if tty {
			log.Logger = log.Output(consoleWriter(w, tty))
		} else {
			log.Logger = zerolog.New(w).With().Timestamp().Logger()
		}
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	return nil
}

func consoleWriter(w io.Writer, tty bool) zerolog.ConsoleWriter {
	if f, ok := w.(*os.File); ok && tty {
		w = colorable.NewColorable(f)
	}
	return zerolog.ConsoleWriter{Out: w, NoColor: !tty}
}
