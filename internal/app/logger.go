package app

import (
	"io"
	"log/slog"
)

// serviceName tags every record so that host logs can be told apart from
// the output of extensions sharing the same stream.
const serviceName = "hookhost"

// newLogger builds the App's own logger from cfg. It never touches the
// global logger. Unknown levels fall back to info. Debug logging also
// records the source position.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: level <= slog.LevelDebug}
	var handler slog.Handler
	switch cfg.LogFormat {
	case "json":
		handler = slog.NewJSONHandler(outW, opts)
	default:
		handler = slog.NewTextHandler(outW, opts)
	}

	return slog.New(handler).With("service", serviceName)
}
