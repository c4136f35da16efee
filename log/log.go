package log

import (
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
)

func NewHandler(name string) slog.Handler {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          name,
	})
}

// New returns a named slog logger backed by a charmbracelet handler.
func New(name string) *slog.Logger {
	return slog.New(NewHandler(name))
}
