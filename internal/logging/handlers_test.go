package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewTeeHandlerCollapses(t *testing.T) {
	_, ok := newTeeHandler(nil, nil).(noopHandler)
	assert.True(t, ok, "all-nil handlers should collapse to the no-op handler")

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	assert.Equal(t, inner, newTeeHandler(nil, inner, nil), "single handler should be returned unwrapped")
}

func TestTeeHandlerRespectsPerHandlerLevel(t *testing.T) {
	var infoBuf, debugBuf bytes.Buffer
	infoHandler := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	debugHandler := slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	h := newTeeHandler(infoHandler, debugHandler)
	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))

	slog.New(h).Debug("debug only message")
	assert.Zero(t, infoBuf.Len(), "info handler should not receive debug records")
	assert.NotZero(t, debugBuf.Len())
}

func TestTeeHandlerPropagatesAttrsAndGroups(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := newTeeHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))

	slog.New(h.WithAttrs([]slog.Attr{slog.String(FieldSessionID, "abc")}).WithGroup("transfer")).
		Info("copied", slog.Int(FieldFilesCopied, 2))

	for _, buf := range []*bytes.Buffer{&buf1, &buf2} {
		assert.Contains(t, buf.String(), `"session_id":"abc"`)
		assert.Contains(t, buf.String(), `"transfer":{"files_copied":2}`)
	}
}

func TestTeeLogger(t *testing.T) {
	var baseBuf, teeBuf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&baseBuf, nil))

	TeeLogger(base, slog.NewJSONHandler(&teeBuf, nil)).Info("teed message")
	assert.NotZero(t, baseBuf.Len())
	assert.NotZero(t, teeBuf.Len())

	teeBuf.Reset()
	TeeLogger(nil, slog.NewJSONHandler(&teeBuf, nil)).Info("no base")
	assert.NotZero(t, teeBuf.Len())
}

func TestJSONHandlerWritesDurationsInMilliseconds(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	slog.New(newJSONHandler(&buf, lvl, false)).Info("session complete", slog.Duration("elapsed", 1500*time.Millisecond))

	assert.Contains(t, buf.String(), `"elapsed_ms":1500`)
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestFormatValueQuotesAmbiguousStrings(t *testing.T) {
	assert.Equal(t, `""`, formatValue(slog.StringValue("")))
	assert.Equal(t, `"two words"`, formatValue(slog.StringValue("two words")))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
	assert.Equal(t, "42", formatValue(slog.IntValue(42)))
	assert.Equal(t, "plain", attrString(slog.StringValue("plain")))
}
