package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/thenoetrevino/leadboard/internal/config"
)

// Logger is the global slog instance for the application
var Logger *slog.Logger

// Init initializes the logging system. Logs go to cfg.File, or to
// ~/.leadboard/logs/leadboard.log when unset. Uses text format for human
// readability. The returned closer releases the log file.
func Init(cfg config.LogConfig) (io.Closer, error) {
	logPath := cfg.File
	if logPath == "" {
		logPath = filepath.Join(config.DataDir(), "logs", "leadboard.log")
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		_ = file.Close()
		return nil, err
	}

	Setup(file, level)
	return file, nil
}

// Setup points slog and the standard log package at w.
func Setup(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	Logger = slog.New(handler)
	slog.SetDefault(Logger)

	// standard log output (badger, gin debug) goes to the same place
	log.SetOutput(w)
	log.SetFlags(log.LstdFlags)
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
