package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/lmittmann/tint"
)

const serviceName = "smart"

// New creates the process logger. "text" selects a colored console handler,
// anything else JSON output for backend services.
func New(level slog.Level, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level slog.Level, format string) *slog.Logger {
	var handler slog.Handler
	if format == "text" {
		handler = tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.DateTime})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.New(handler).With("service", serviceName, "version", Version())
}

// Version reports the build version embedded by the Go toolchain.
func Version() string {
	return versioninfo.Short()
}
