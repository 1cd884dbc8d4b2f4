// Package applog configures the process logger: JSON records in a size-rotated file.
package applog

import (
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a JSON logger writing to a rotated logFile, and the closer for the file.
// debug lowers the level to Debug. The rotator creates missing directories on first write.
func New(logFile string, debug bool) (*slog.Logger, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     30, // days
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(rotator, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	return slog.New(handler), rotator
}

// Setup builds New's logger and installs it as the slog default.
func Setup(logFile string, debug bool) (*slog.Logger, io.Closer) {
	logger, closer := New(logFile, debug)
	slog.SetDefault(logger)
	return logger, closer
}

// KeyTail renders an API key as its last five characters only.
func KeyTail(apiKey string) string {
	if apiKey == "" {
		return "(empty)"
	}
	r := []rune(apiKey)
	if len(r) <= 5 {
		return "..."
	}
	return "..." + string(r[len(r)-5:])
}
