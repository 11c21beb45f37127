// Package applog provides general-purpose application logging.
//
// Everything goes through a process-wide *slog.Logger built on a tint
// handler. The TUI owns stdout, so in TUI mode logs are written to
// ~/.querymaster/logs/app.log; the CLI and the server log to stderr.
package applog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// Options configures Setup.
type Options struct {
	Level string // debug, info, warn, error
	// ToFile sends logs to ~/.querymaster/logs/app.log instead of Writer.
	ToFile bool
	// Writer defaults to os.Stderr.
	Writer  io.Writer
	NoColor bool
}

var (
	mu      sync.Mutex
	logger  = slog.New(tint.NewHandler(io.Discard, nil))
	logFile *os.File
)

// Setup installs the process logger. It may be called more than once;
// a previously opened log file is closed.
func Setup(opts Options) (*slog.Logger, error) {
	mu.Lock()
	defer mu.Unlock()

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	noColor := opts.NoColor

	var f *os.File
	if opts.ToFile {
		path, err := LogPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		f, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		noColor = true
	}

	l := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      ParseLevel(opts.Level),
		TimeFormat: time.DateTime,
		NoColor:    noColor,
	}))

	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logger = l
	slog.SetDefault(l)
	return l, nil
}

// LogPath returns ~/.querymaster/logs/app.log.
func LogPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".querymaster", "logs", "app.log"), nil
}

// ParseLevel maps a config string to a slog level; unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Logger returns the current process logger.
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Info logs a general info message.
func Info(format string, args ...any) {
	Logger().Info(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func Error(format string, args ...any) {
	Logger().Error(fmt.Sprintf(format, args...))
}

// Event logs a structured event with a category.
func Event(category string, msg string, attrs ...any) {
	Logger().Info(msg, append([]any{"category", category}, attrs...)...)
}

// Close flushes and closes the log file, if any.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}
