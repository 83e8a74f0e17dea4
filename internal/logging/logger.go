package logging

import (
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a small leveled logger. Methods taking reqID tag the line with
// the request ID so preview and analyze calls can be followed in the log.
type Logger struct {
	mu     sync.Mutex
	level  Level
	prefix string
	out    *log.Logger
}

func New(w io.Writer, level string) *Logger {
	return &Logger{
		level: ParseLevel(level),
		out:   log.New(w, "", log.Ldate|log.Ltime),
	}
}

// NewStderr logs to standard error, used by the headless commands.
func NewStderr(level string) *Logger { return New(os.Stderr, level) }

func NewDiscard() *Logger { return New(io.Discard, "error") }

// SetOutput and SetPrefix let tea.LogToFileWith redirect the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.SetOutput(w)
}

func (l *Logger) SetPrefix(p string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = p
}

func (l *Logger) Debug(reqID string, format string, args ...any) {
	l.logf(LevelDebug, "DEBUG: ", reqID, format, args...)
}

func (l *Logger) Info(reqID string, format string, args ...any) {
	l.logf(LevelInfo, "INFO: ", reqID, format, args...)
}

func (l *Logger) Warn(reqID string, format string, args ...any) {
	l.logf(LevelWarn, "WARN: ", reqID, format, args...)
}

func (l *Logger) Error(reqID string, format string, args ...any) {
	l.logf(LevelError, "ERROR: ", reqID, format, args...)
}

func (l *Logger) logf(level Level, tag, reqID, format string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if reqID != "" {
		format = "[" + reqID + "] " + format
	}
	l.out.Printf(l.prefix+tag+format, args...)
}
