package objrepo

import (
	"log/slog"
	"os"
	"strings"
)

var logLevel = new(slog.LevelVar)

// ConfigureLogging sets up the global default logger from cfg. cfg.LogLevel
// takes precedence; an empty LogLevel falls back to the OBJREPO_LOG_LEVEL
// environment variable, then to Info. cfg.LogFormat of "json" switches to a
// JSONHandler; anything else (including empty) uses text. Debug level also
// turns on source-file attribution, since that's when it earns its keep.
func ConfigureLogging(cfg Configuration) {
	level := strings.ToUpper(cfg.LogLevel)
	if level == "" {
		level = strings.ToUpper(os.Getenv("OBJREPO_LOG_LEVEL"))
	}
	switch level {
	case "DEBUG":
		logLevel.Set(slog.LevelDebug)
	case "WARN":
		logLevel.Set(slog.LevelWarn)
	case "ERROR":
		logLevel.Set(slog.LevelError)
	default:
		logLevel.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: logLevel, AddSource: logLevel.Level() == slog.LevelDebug}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// SetLogLevel overrides the level set by ConfigureLogging, e.g. to raise
// verbosity temporarily around a single operation.
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}
