package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferedEntry(format Format) (*logrus.Entry, *bytes.Buffer) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.Formatter = formatter(format)
	return logrus.NewEntry(l), &buf
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestNewLogger(t *testing.T) {
	l := newLogger()

	assert.Equal(t, os.Stderr, l.Out, "stdout is reserved for the stdio transport")

	textFormatter, ok := l.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.Equal(t, time.RFC3339Nano, textFormatter.TimestampFormat)
	assert.True(t, textFormatter.FullTimestamp)
}

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	assert.Equal(t, L.Logger, G(context.Background()).Logger)
}

func TestWithLogger(t *testing.T) {
	entry := logrus.NewEntry(logrus.New()).WithField(FieldSkillID, "pdf-tools")
	ctx := WithLogger(context.Background(), entry)

	assert.Equal(t, "pdf-tools", G(ctx).Data[FieldSkillID])
}

func TestWithLoggerDoesNotCollideWithOtherKeys(t *testing.T) {
	type customKey string

	ctx := context.WithValue(context.Background(), customKey("logger"), "not a logger")
	ctx = WithLogger(ctx, logrus.NewEntry(logrus.New()).WithField(FieldTool, "get_skill"))

	assert.Equal(t, "not a logger", ctx.Value(customKey("logger")))
	assert.Equal(t, "get_skill", G(ctx).Data[FieldTool])
}

func TestWithFields(t *testing.T) {
	entry, buf := newBufferedEntry(FormatJSON)
	ctx := WithLogger(context.Background(), entry.WithField(FieldRequestID, "req-1"))

	ctx = WithFields(ctx, logrus.Fields{FieldTool: "list_skills"})

	func(ctx context.Context) {
		G(ctx).WithField(FieldSkillID, "xlsx").Info("loaded skill")
	}(ctx)

	entries := decodeLines(t, buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "req-1", entries[0][FieldRequestID])
	assert.Equal(t, "list_skills", entries[0][FieldTool])
	assert.Equal(t, "xlsx", entries[0][FieldSkillID])
	assert.Equal(t, "loaded skill", entries[0]["message"])
}

func TestJSONFormatterFieldNames(t *testing.T) {
	entry, buf := newBufferedEntry(FormatJSON)
	ctx := WithLogger(context.Background(), entry)

	G(ctx).Debug("debug message")
	G(ctx).Info("info message")
	G(ctx).Warn("warn message")
	G(ctx).Error("error message")

	entries := decodeLines(t, buf)
	require.Len(t, entries, 4)

	for i, level := range []string{"debug", "info", "warning", "error"} {
		assert.Equal(t, level, entries[i]["logLevel"])
		assert.Contains(t, entries[i], "message")

		timestamp, ok := entries[i]["timestamp"].(string)
		require.True(t, ok)
		_, err := time.Parse(time.RFC3339Nano, timestamp)
		assert.NoError(t, err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatText},
		{input: "fmt", want: FormatText},
		{input: "text", want: FormatText},
		{input: "JSON", want: FormatJSON},
		{input: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			format, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, format)
		})
	}
}

func TestConfigure(t *testing.T) {
	original := L.Logger.GetLevel()
	originalFormatter := L.Logger.Formatter
	t.Cleanup(func() {
		L.Logger.SetLevel(original)
		L.Logger.Formatter = originalFormatter
	})

	t.Run("json format and debug level", func(t *testing.T) {
		require.NoError(t, Configure("debug", "json"))
		assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, L.Logger.Formatter)
	})

	t.Run("fmt format", func(t *testing.T) {
		require.NoError(t, Configure("warn", "fmt"))
		assert.Equal(t, logrus.WarnLevel, L.Logger.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, L.Logger.Formatter)
	})

	t.Run("invalid level leaves logger untouched", func(t *testing.T) {
		require.NoError(t, Configure("info", "fmt"))

		err := Configure("loud", "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Equal(t, logrus.InfoLevel, L.Logger.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, L.Logger.Formatter)
	})

	t.Run("invalid format", func(t *testing.T) {
		err := Configure("info", "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStdLogger(t *testing.T) {
	buf := &syncBuffer{}
	l := logrus.New()
	l.SetOutput(buf)
	ctx := WithLogger(context.Background(), logrus.NewEntry(l).WithField("component", "mcp"))

	std := StdLogger(ctx, logrus.ErrorLevel)
	std.Println("transport failed")

	assert.Eventually(t, func() bool {
		out := buf.String()
		return strings.Contains(out, "transport failed") && strings.Contains(out, "component=mcp")
	}, time.Second, 10*time.Millisecond)
}
