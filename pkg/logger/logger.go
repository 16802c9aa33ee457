// Package logger provides context-aware structured logging on top of logrus.
// Logs go to stderr by default because stdout carries the MCP stdio stream.
package logger

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Field names shared by every package so log queries stay consistent
const (
	FieldSkillID   = "skill_id"
	FieldPath      = "path"
	FieldDir       = "dir"
	FieldRequestID = "request_id"
	FieldTool      = "tool"
)

// Format selects the log encoding
type Format string

const (
	// FormatText is logrus's key=value text format
	FormatText Format = "fmt"
	// FormatJSON emits one JSON object per line
	FormatJSON Format = "json"
)

var (
	// G is a convenience alias for GetLogger
	G = GetLogger
	// L is the process-wide logger used when the context carries none
	L = logrus.NewEntry(newLogger())
)

type (
	loggerKey struct{}
)

// WithLogger attaches a logger entry to the given context
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	e := logger.WithContext(ctx)
	return context.WithValue(ctx, loggerKey{}, e)
}

// WithFields returns a context whose logger carries fields on top of the
// logger already in ctx
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, G(ctx).WithFields(fields))
}

// GetLogger retrieves the logger entry from the context, falling back to L
func GetLogger(ctx context.Context) *logrus.Entry {
	logger := ctx.Value(loggerKey{})

	if logger == nil {
		return L.WithContext(ctx)
	}

	return logger.(*logrus.Entry)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.Formatter = formatter(FormatText)
	return l
}

// ParseFormat accepts "fmt" (or "text") and "json". An empty string means fmt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fmt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.Errorf("invalid log format %q, must be one of: fmt, json", s)
	}
}

func formatter(format Format) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "logLevel",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	}
	return &logrus.TextFormatter{
		TimestampFormat: time.RFC3339Nano,
		FullTimestamp:   true,
	}
}

// Configure sets the level and format of the global logger. Nothing changes
// unless both are valid.
func Configure(level, format string) error {
	logFormat, err := ParseFormat(format)
	if err != nil {
		return err
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}

	L.Logger.SetLevel(logLevel)
	L.Logger.Formatter = formatter(logFormat)
	return nil
}

// StdLogger adapts the context logger to a *log.Logger writing at the given
// level, for libraries that only accept the standard logger
func StdLogger(ctx context.Context, level logrus.Level) *log.Logger {
	return log.New(G(ctx).WriterLevel(level), "", 0)
}
