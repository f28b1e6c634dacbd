package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level orders log severities; messages below the logger's level are dropped.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
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

// Logger provides leveled logging throughout the application.
type Logger struct {
	level atomic.Int32
	out   *log.Logger
	err   *log.Logger
	color bool
}

// NewLogger creates a Logger writing info/debug/warn to stdout and errors to stderr.
func NewLogger() *Logger {
	return NewLoggerTo(os.Stdout, os.Stderr, true)
}

// NewLoggerTo creates a Logger over arbitrary writers. Colour codes are
// only emitted when color is true.
func NewLoggerTo(out, errOut io.Writer, color bool) *Logger {
	l := &Logger{
		out:   log.New(out, "", 0),
		err:   log.New(errOut, "", 0),
		color: color,
	}
	l.level.Store(int32(LevelInfo))
	return l
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *Logger) enabled(level Level) bool {
	return level >= Level(l.level.Load())
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) tag(code, name string) string {
	if !l.color {
		return name
	}
	return "\033[" + code + "m" + name + "\033[0m"
}

func (l *Logger) write(dst *log.Logger, level Level, tag, format string, args ...any) {
	if !l.enabled(level) {
		return
	}
	dst.Printf("[%s] %s %s", l.timestamp(), tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...any) {
	l.write(l.out, LevelInfo, l.tag("32", "INFO "), format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.write(l.out, LevelWarn, l.tag("33", "WARN "), format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.write(l.err, LevelError, l.tag("31", "ERROR"), format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.write(l.out, LevelDebug, l.tag("36", "DEBUG"), format, args...)
}
