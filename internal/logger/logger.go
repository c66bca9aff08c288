package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger defines the datacycle logging contract.
// Implementations should support standard log levels and be safe for concurrent use.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

// Level is the minimum severity a StdLogger writes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// StdLogger wraps Go's standard logger with a level filter.
type StdLogger struct {
	logger *log.Logger
	level  Level
}

// NewStdLogger creates a StdLogger writing to stdout at LevelInfo.
func NewStdLogger() *StdLogger {
	return New(os.Stdout, LevelInfo)
}

// New creates a StdLogger writing to w, dropping entries below level.
func New(w io.Writer, level Level) *StdLogger {
	return &StdLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

func (l *StdLogger) Info(msg string, args ...any) {
	l.printf(LevelInfo, "[INFO] ", msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...any) {
	l.printf(LevelWarn, "[WARN] ", msg, args...)
}

func (l *StdLogger) Error(msg string, args ...any) {
	l.printf(LevelError, "[ERROR] ", msg, args...)
}

func (l *StdLogger) Debug(msg string, args ...any) {
	l.printf(LevelDebug, "[DEBUG] ", msg, args...)
}

func (l *StdLogger) printf(level Level, tag, msg string, args ...any) {
	if level < l.level {
		return
	}
	l.logger.Printf(tag+msg, args...)
}

// Discard drops every entry. Useful in tests.
var Discard Logger = New(io.Discard, LevelError+1)

// Default provides a global default logger instance.
var Default Logger = NewStdLogger()
