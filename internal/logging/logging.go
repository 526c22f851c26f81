// Package logging owns the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

var (
	level  = new(slog.LevelVar)
	logger = slog.New(newHandler(os.Stderr))
)

// newHandler picks a colorized handler on terminals and plain text
// otherwise, so piped logs stay machine-readable.
func newHandler(f *os.File) slog.Handler {
	if term.IsTerminal(int(f.Fd())) {
		return tint.NewHandler(f, &tint.Options{Level: level, TimeFormat: time.Kitchen})
	}
	return slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	return logger
}

// SetLevel adjusts the minimum level for all subsequent log output.
func SetLevel(l slog.Level) {
	level.Set(l)
}
