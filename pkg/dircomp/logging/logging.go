// Package logging provides component-scoped structured logging for
// dircomp. Logs go to a file by default: while the TUI owns the
// terminal, nothing may write to stderr.
//
// Basic usage:
//
//	cfg := logging.Config{Level: "info"}
//	if err := logging.Init(cfg); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("engine")
//	logger.Info("generation started", "gen", 1)
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// Level represents a logging level.
type Level int

// Log levels from least to most severe.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is
// provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	Path string

	// Console sends output to stderr instead of the file. Only valid
	// for non-interactive runs.
	Console bool
}

// DefaultLogPath returns the standard log file location under the
// XDG state directory.
func DefaultLogPath() string {
	path, err := xdg.StateFile("dircomp/dircomp.log")
	if err != nil {
		return filepath.Join(os.TempDir(), "dircomp.log")
	}
	return path
}

type state struct {
	mu      sync.Mutex
	level   Level
	writer  io.Writer
	file    *os.File
	loggers map[string]*log.Logger
}

var global = &state{
	level:   LevelInfo,
	writer:  io.Discard,
	loggers: make(map[string]*log.Logger),
}

// Init opens the log sink and sets the level. Loggers obtained from
// Get before Init discard output until Init runs.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if global.file != nil {
		global.file.Close()
		global.file = nil
	}

	if cfg.Console {
		global.writer = os.Stderr
	} else {
		path := cfg.Path
		if path == "" {
			path = DefaultLogPath()
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		global.file = f
		global.writer = f
	}

	global.level = level
	for component, logger := range global.loggers {
		configure(logger, component)
	}
	return nil
}

// Get returns the logger for a component, creating it on first use.
// Safe for concurrent use.
func Get(component string) *log.Logger {
	global.mu.Lock()
	defer global.mu.Unlock()

	if logger, ok := global.loggers[component]; ok {
		return logger
	}
	logger := log.New(global.writer)
	configure(logger, component)
	global.loggers[component] = logger
	return logger
}

// Close flushes and closes the log sink.
func Close() error {
	global.mu.Lock()
	defer global.mu.Unlock()

	for _, logger := range global.loggers {
		logger.SetOutput(io.Discard)
	}
	if global.file != nil {
		err := global.file.Close()
		global.file = nil
		global.writer = io.Discard
		return err
	}
	global.writer = io.Discard
	return nil
}

// configure applies the global sink and level to a component logger.
// Caller holds the state lock.
func configure(logger *log.Logger, component string) {
	logger.SetOutput(global.writer)
	logger.SetLevel(global.level.toCharmLevel())
	logger.SetPrefix(component)
	logger.SetReportTimestamp(true)
}
