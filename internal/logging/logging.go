// Package logging is a small leveled logger over the standard log package.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

var level_names = []string{"ERROR", "WARN", "INFO", "DEBUG", "TRACE"}

func (l Level) String() string {
	if l >= LevelError && l <= LevelTrace {
		return level_names[l]
	}
	return "UNKNOWN"
}

// ParseLevel accepts the level names in any case. Unknown names give
// LevelInfo and false.
func ParseLevel(s string) (Level, bool) {
	for i, name := range level_names {
		if strings.EqualFold(s, name) {
			return Level(i), true
		}
	}
	return LevelInfo, false
}

type Logger struct {
	level Level
	out   *log.Logger
}

func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewDefault logs to stderr at the level named by LOG_LEVEL, INFO if unset.
func NewDefault() *Logger {
	level, _ := ParseLevel(os.Getenv("LOG_LEVEL"))
	return New(os.Stderr, level)
}

func (l *Logger) Level() Level         { return l.level }
func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) logf(level Level, format string, args ...any) {
	if l.level >= level {
		l.out.Printf("["+level.String()+"] "+format, args...)
	}
}

func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Trace(format string, args ...any) { l.logf(LevelTrace, format, args...) }

// Discard drops everything.
var Discard = New(io.Discard, LevelError)

var Default = NewDefault()
