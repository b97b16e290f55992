// Package logging provides component loggers for sizewatch. CI jobs write
// plain stderr, so this is a thin layer over charmbracelet/log that adds
// component prefixes and a shared level.
//
// Basic usage:
//
//	if err := logging.Init("debug"); err != nil {
//	    return err
//	}
//	logger := logging.Get("engine")
//	logger.Info("diff computed", "dir", "dist")
package logging

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

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

// toCharmLevel converts our Level to charmbracelet/log level.
func (l Level) toCharmLevel() log.Level {
	switch l {
	case LevelDebug:
		return log.DebugLevel
	case LevelInfo:
		return log.InfoLevel
	case LevelWarn:
		return log.WarnLevel
	case LevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a string into a Level.
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
		return LevelInfo, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

var (
	mu      sync.Mutex
	level   = log.InfoLevel
	loggers = map[string]*log.Logger{}
)

// Init sets the global log level for all component loggers, existing and
// future. Safe to call more than once.
func Init(levelStr string) error {
	l, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	level = l.toCharmLevel()
	for _, lg := range loggers {
		lg.SetLevel(level)
	}
	return nil
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if lg, ok := loggers[component]; ok {
		return lg
	}
	lg := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          component,
		ReportTimestamp: true,
	})
	lg.SetLevel(level)
	loggers[component] = lg
	return lg
}
