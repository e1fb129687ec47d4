// Package logging writes structured JSON logs to a size-rotated file
// under ~/.caselens/logs, optionally teed to stderr.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Config controls where logs go and how much is kept.
type Config struct {
	// Level is the minimum level name: debug, info, warn, error.
	Level string
	// FilePath is the log file; empty disables file logging.
	FilePath string
	// MaxSizeMB caps the file size before rotation.
	MaxSizeMB int
	// MaxFiles is how many rotated files to keep beside the live one.
	MaxFiles int
	// WriteToStderr tees every record to stderr as well.
	WriteToStderr bool
}

// DefaultConfig logs info-level JSON to ~/.caselens/logs/caselens.log,
// teed to stderr, rotating at 10 MB with 5 kept files.
func DefaultConfig() Config {
	return Config{
		Level:         "info",
		FilePath:      DefaultLogPath(),
		MaxSizeMB:     10,
		MaxFiles:      5,
		WriteToStderr: true,
	}
}

// DefaultLogPath places the log file under the user's home directory,
// or the system temp directory when home cannot be resolved.
func DefaultLogPath() string {
	root, err := os.UserHomeDir()
	if err != nil {
		root = os.TempDir()
	}
	return filepath.Join(root, ".caselens", "logs", "caselens.log")
}

// Setup builds a JSON slog.Logger per the config. The cleanup function
// flushes and closes the log file; call it on shutdown.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	file, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	sink := io.Writer(file)
	if cfg.WriteToStderr {
		sink = io.MultiWriter(file, os.Stderr)
	}
	handler := slog.NewJSONHandler(sink, &slog.HandlerOptions{
		Level: LevelFromString(cfg.Level),
	})

	return slog.New(handler), func() {
		_ = file.Sync()
		_ = file.Close()
	}, nil
}

// LevelFromString maps a level name onto slog. Unknown names mean info
// so a typo in config never silences the log.
func LevelFromString(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
