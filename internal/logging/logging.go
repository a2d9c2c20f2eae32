// Package logging provides structured logging for osk.
//
// Loggers are thin wrappers around log/slog. Each component derives its own
// logger with WithComponent so that log lines can be filtered by subsystem
// (keyboard, widget, config, mousectl, ...).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level represents a logging level.
type Level = slog.Level

// Log levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Format represents the output format for logs.
type Format int

const (
	// FormatText outputs human-readable text logs.
	FormatText Format = iota
	// FormatJSON outputs JSON-structured logs.
	FormatJSON
)

// ParseFormat parses "text" or "json". Anything else is text.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, "json") {
		return FormatJSON
	}
	return FormatText
}

// Config holds the logging configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level Level

	// Format is the output format (text or JSON).
	Format Format

	// Output specifies where logs are written: "stderr", "stdout", "file" or "discard".
	Output string

	// FilePath is the log file used when Output is "file".
	FilePath string

	// AddSource adds source file and line to log entries.
	AddSource bool

	// Component is the name attached to every entry of the root logger.
	Component string

	// Writer overrides Output when set. Used by tests.
	Writer io.Writer
}

// DefaultConfig returns a default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Level:     LevelInfo,
		Format:    FormatText,
		Output:    "stderr",
		FilePath:  DefaultLogPath(),
		Component: "osk",
	}
}

// DefaultLogPath returns $XDG_STATE_HOME/osk/osk.log.
func DefaultLogPath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		homeDir, _ := os.UserHomeDir()
		stateHome = filepath.Join(homeDir, ".local", "state")
	}
	return filepath.Join(stateHome, "osk", "osk.log")
}

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
	file io.Closer
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// Default returns the process-wide logger. Until SetDefault is called it
// logs warnings and errors to stderr.
func Default() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: LevelWarn}))}
	}
	return defaultLogger
}

// SetDefault replaces the process-wide logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
	slog.SetDefault(l.Logger)
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// New creates a new Logger with the given configuration.
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	l := &Logger{}
	w, err := l.openWriter(cfg)
	if err != nil {
		return nil, fmt.Errorf("setup log output: %w", err)
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	if cfg.Component != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("component", cfg.Component)})
	}

	l.Logger = slog.New(handler)
	return l, nil
}

func (l *Logger) openWriter(cfg *Config) (io.Writer, error) {
	if cfg.Writer != nil {
		return cfg.Writer, nil
	}
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		return os.Stdout, nil
	case "discard":
		return io.Discard, nil
	case "file":
		path := cfg.FilePath
		if path == "" {
			path = DefaultLogPath()
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		l.file = f
		return f, nil
	default:
		return os.Stderr, nil
	}
}

// WithComponent returns a logger tagged with the component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("component", name)), file: l.file}
}

// WithField returns a logger with one extra attribute.
func (l *Logger) WithField(key string, value any) *Logger {
	return &Logger{Logger: l.Logger.With(key, value), file: l.file}
}

// WithFields returns a logger with the given attributes added.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.Logger.With(args...), file: l.file}
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// OrDefault returns l, or the process-wide logger when l is nil.
func OrDefault(l *Logger) *Logger {
	if l == nil {
		return Default()
	}
	return l
}

// ParseLevel parses a string into a log level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}
