package logging

import (
	"io"
	"log/slog"
	"os"
)

// New builds the process logger and installs it as slog's default. Records
// go to stderr, and are appended to logFile as well when one is named. format
// "text" selects logfmt-style key=value lines; anything else yields one JSON
// object per record. Records below level are dropped. Callers defer the
// returned cleanup, which closes logFile.
func New(level, logFile, format string) (*slog.Logger, func(), error) {
	return newLogger(os.Stderr, level, logFile, format)
}

// newLogger is New with the console writer supplied by the caller.
func newLogger(stderr io.Writer, level, logFile, format string) (*slog.Logger, func(), error) {
	writers := []io.Writer{stderr}
	cleanup := func() {}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, f)
		cleanup = func() { _ = f.Close() }
	}

	w := io.MultiWriter(writers...)
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, cleanup, nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
