package logging

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Setup initializes the global slog logger with charmbracelet/log as the
// backend. Interactive terminals get colored text output; everything else
// (CI, agents capturing stderr) gets JSON.
func Setup(verbose bool) {
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	})

	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler.SetLevel(level)

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		handler.SetFormatter(charmlog.JSONFormatter)
	}

	slog.SetDefault(slog.New(handler))
}
