package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

// Logger is a small levelled wrapper around the standard logger.
type Logger struct {
	level level
	out   *log.Logger
}

// New creates a Logger writing to stderr. Unknown levels fall back to info.
func New(lvl string) *Logger {
	return NewWithWriter(lvl, os.Stderr)
}

// NewWithWriter creates a Logger writing to w.
func NewWithWriter(lvl string, w io.Writer) *Logger {
	return &Logger{level: parseLevel(lvl), out: log.New(w, "", log.LstdFlags)}
}

func parseLevel(lvl string) level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return levelDebug
	case "warn", "warning":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (l *Logger) Debug(msg string) {
	if l.level <= levelDebug {
		l.out.Printf("[DEBUG] %s", msg)
	}
}

func (l *Logger) Info(msg string) {
	if l.level <= levelInfo {
		l.out.Printf("[INFO] %s", msg)
	}
}

func (l *Logger) Warn(msg string) {
	if l.level <= levelWarn {
		l.out.Printf("[WARN] %s", msg)
	}
}

func (l *Logger) Error(msg string) {
	l.out.Printf("[ERROR] %s", msg)
}

func (l *Logger) Fatal(msg string) {
	l.out.Printf("[FATAL] %s", msg)
	os.Exit(1)
}

func (l *Logger) Debugf(format string, args ...any) { l.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)  { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)  { l.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any) { l.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Fatalf(format string, args ...any) { l.Fatal(fmt.Sprintf(format, args...)) }

// Writer exposes the underlying writer, e.g. for gin or gorm log output.
func (l *Logger) Writer() io.Writer {
	return l.out.Writer()
}
