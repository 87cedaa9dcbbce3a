package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plain(buf *bytes.Buffer, level slog.Level) *Logger {
	noColor := false
	return New(Config{Writer: buf, Format: FormatPretty, Level: level, Color: &noColor})
}

func TestNew_FormatFollowsEnvironment(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Environment: "production"}).Info("started", "books", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "started", rec["msg"])
	assert.Equal(t, float64(3), rec["books"])

	buf.Reset()
	noColor := false
	New(Config{Writer: &buf, Environment: "development", Color: &noColor}).Info("started")
	assert.Contains(t, buf.String(), "INF started")
	assert.NotContains(t, buf.String(), "{")
}

func TestNew_ExplicitFormatWins(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf, Environment: "development", Format: FormatJSON}).Info("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNew_BufferIsNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Writer: &buf}).Warn("careful")
	assert.NotContains(t, buf.String(), "\033[")
}

func TestNew_ForcedColor(t *testing.T) {
	var buf bytes.Buffer
	color := true
	New(Config{Writer: &buf, Color: &color}).Error("broken")
	assert.Contains(t, buf.String(), ansiRed+"ERR"+ansiReset)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestPrettyHandler_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := plain(&buf, slog.LevelWarn)

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WRN shown")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestPrettyHandler_Line(t *testing.T) {
	var buf bytes.Buffer
	log := plain(&buf, slog.LevelDebug)

	log.Debug("search finished", "text", "amazing grace", "total", 2, "empty", "")

	line := strings.TrimSuffix(buf.String(), "\n")
	_, err := time.Parse("15:04:05", line[:8])
	require.NoError(t, err, "line starts with a clock time: %q", line)
	assert.Contains(t, line, ` DBG search finished text="amazing grace" total=2 empty=""`)
}

func TestPrettyHandler_WithGroup(t *testing.T) {
	var buf bytes.Buffer
	log := plain(&buf, slog.LevelInfo)

	log.WithGroup("request").Info("loaded", "book_id", "book-1", "count", 3)
	assert.Contains(t, buf.String(), "request.book_id=book-1 request.count=3")
}

func TestPrettyHandler_AttrsBeforeGroupKeepTheirKeys(t *testing.T) {
	var buf bytes.Buffer
	log := plain(&buf, slog.LevelInfo)

	log.With("op", "export").WithGroup("deck").Info("written", "slides", 4)
	assert.Contains(t, buf.String(), "op=export deck.slides=4")
}

func TestPrettyHandler_EmptyGroupIsIgnored(t *testing.T) {
	h := newPrettyHandler(&bytes.Buffer{}, nil, false)
	assert.Same(t, h, h.WithGroup(""))
}

func TestPrettyHandler_Source(t *testing.T) {
	var buf bytes.Buffer
	noColor := false
	New(Config{Writer: &buf, AddSource: true, Color: &noColor}).Info("where")
	assert.Contains(t, buf.String(), "logger_test.go:")
}

func TestPrettyHandler_ConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	log := plain(&buf, slog.LevelInfo)

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := log.WithField("worker", w)
			for i := range perWorker {
				child.Info("summary built", "i", i)
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, workers*perWorker)
	for _, l := range lines {
		assert.Contains(t, l, "INF summary built worker=")
	}
}

func TestLevelStyle(t *testing.T) {
	name, color := levelStyle(slog.LevelWarn)
	assert.Equal(t, "WRN", name)
	assert.Equal(t, ansiYellow, color)

	name, color = levelStyle(slog.LevelInfo + 2)
	assert.Equal(t, "INFO+2", name)
	assert.Equal(t, ansiGray, color)
}

func TestFormatValue(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		v    slog.Value
		want string
	}{
		{slog.StringValue("plain"), "plain"},
		{slog.StringValue("two words"), `"two words"`},
		{slog.StringValue("a=b"), `"a=b"`},
		{slog.StringValue(""), `""`},
		{slog.IntValue(42), "42"},
		{slog.BoolValue(true), "true"},
		{slog.TimeValue(at), "2024-03-01T09:30:00Z"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatValue(tt.v))
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := plain(&buf, slog.LevelInfo)

	assert.Same(t, log, log.WithError(nil))

	log.WithError(errors.New("disk full")).Error("import failed")
	assert.Contains(t, buf.String(), `error="disk full"`)
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := plain(&buf, slog.LevelInfo)

	log.WithField("book", "hymns").WithFields(map[string]any{"entries": 12}).Info("counted")
	assert.Contains(t, buf.String(), "book=hymns entries=12")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	require.NotNil(t, log)
	log.Error("dropped")
	assert.False(t, log.Enabled(t.Context(), slog.LevelError))
}
