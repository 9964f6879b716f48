// Package runtime holds process-wide plumbing shared by the server and CLI.
package runtime

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger defines the structured logging interface used across gemini-bridge.
type Logger interface {
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
	Debug(msg string, fields map[string]any)
}

// StructuredLogger writes structured log entries through logrus.
type StructuredLogger struct {
	log *logrus.Logger
}

// NewJSONLogger creates a StructuredLogger emitting JSON lines to w. Debug
// entries are only emitted when verbose is true.
func NewJSONLogger(w io.Writer, verbose bool) *StructuredLogger {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	return newStructuredLogger(w, level, &logrus.JSONFormatter{})
}

// NewLogger creates a StructuredLogger from a level name (debug, info, warn,
// error) and a format name (json or text).
func NewLogger(w io.Writer, level, format string) (*StructuredLogger, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		lvl = parsed
	}

	var formatter logrus.Formatter
	switch strings.ToLower(format) {
	case "", "json":
		formatter = &logrus.JSONFormatter{}
	case "text":
		formatter = &logrus.TextFormatter{DisableColors: true, FullTimestamp: true}
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return newStructuredLogger(w, lvl, formatter), nil
}

func newStructuredLogger(w io.Writer, level logrus.Level, formatter logrus.Formatter) *StructuredLogger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(formatter)
	return &StructuredLogger{log: l}
}

func (l *StructuredLogger) Info(msg string, fields map[string]any) {
	l.log.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *StructuredLogger) Warn(msg string, fields map[string]any) {
	l.log.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *StructuredLogger) Error(msg string, fields map[string]any) {
	l.log.WithFields(logrus.Fields(fields)).Error(msg)
}

func (l *StructuredLogger) Debug(msg string, fields map[string]any) {
	l.log.WithFields(logrus.Fields(fields)).Debug(msg)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(string, map[string]any)  {}
func (NopLogger) Warn(string, map[string]any)  {}
func (NopLogger) Error(string, map[string]any) {}
func (NopLogger) Debug(string, map[string]any) {}
