// Package logging provides structured logging infrastructure for kudosx.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kudosx/kudosx/internal/config"
)

// Options adjusts how a logger is built from configuration.
type Options struct {
	// Verbose forces debug level regardless of the configured level.
	Verbose bool

	// Stderr is the console sink. Defaults to os.Stderr.
	Stderr io.Writer
}

// NewFromConfig creates a new slog.Logger based on configuration.
// The returned closer is non-nil only when a log file was opened.
func NewFromConfig(cfg *config.Config, baseDir string, opts Options) (*slog.Logger, io.Closer, error) {
	level := parseLevel(cfg.Logging.Level)
	if opts.Verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	if opts.Stderr != nil {
		w = opts.Stderr
	}

	var closer io.Closer
	if logPath := cfg.LogFile(baseDir); logPath != "" {
		if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
			return nil, nil, err
		}

		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		closer = file
		w = io.MultiWriter(w, file)
	}

	return slog.New(newHandler(cfg.Logging.Format, w, level)), closer, nil
}

// NewForTest creates a silent logger for tests.
func NewForTest() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// parseLevel converts config log level to slog.Level.
func parseLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogLevelDebug:
		return slog.LevelDebug
	case config.LogLevelInfo:
		return slog.LevelInfo
	case config.LogLevelWarn:
		return slog.LevelWarn
	case config.LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func newHandler(format config.LogFormat, w io.Writer, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	if format == config.LogFormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// WithSkill returns a logger with skill context.
func WithSkill(logger *slog.Logger, name string) *slog.Logger {
	return logger.With("skill", name)
}

// WithRepo returns a logger with repository context.
func WithRepo(logger *slog.Logger, repo string) *slog.Logger {
	return logger.With("repo", repo)
}

// WithTask returns a logger with background task context.
func WithTask(logger *slog.Logger, taskID, action string) *slog.Logger {
	return logger.With("task_id", taskID, "action", action)
}
