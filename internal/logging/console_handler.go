package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// prettyHandler writes human-oriented records:
//
//	2026-01-02 15:04:05.000 INFO [channel] Session 0f8fad5b – session complete
//	    - files_copied: 2
//
// The component and session attributes are lifted into the header line; the
// remaining attributes follow one per line, last value winning per key.
type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	addSource bool
	prefix    []string
	attrs     []field
}

type field struct {
	key   string
	value slog.Value
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append([]field(nil), h.attrs...)
	for _, a := range attrs {
		next.attrs = appendFlattened(next.attrs, h.prefix, a)
	}
	return &next
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = append(append([]string(nil), h.prefix...), name)
	return &next
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	fields := append([]field(nil), h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendFlattened(fields, h.prefix, a)
		return true
	})

	var sb strings.Builder
	h.writeHeader(&sb, record, fields)
	for _, f := range detailFields(fields) {
		sb.WriteString("    - ")
		sb.WriteString(f.key)
		sb.WriteString(": ")
		sb.WriteString(formatValue(f.value))
		sb.WriteByte('\n')
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, sb.String())
	return err
}

func (h *prettyHandler) writeHeader(sb *strings.Builder, record slog.Record, fields []field) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	sb.WriteString(formatTimestamp(ts))
	sb.WriteByte(' ')
	sb.WriteString(levelLabel(record.Level))
	if component := firstValue(fields, FieldComponent); component != "" {
		sb.WriteString(" [" + component + "]")
	}
	if session := firstValue(fields, FieldSessionID); session != "" {
		sb.WriteString(" Session " + shortSession(session))
	}
	sb.WriteString(" – ")
	if msg := strings.TrimSpace(record.Message); msg != "" {
		sb.WriteString(msg)
	} else {
		sb.WriteString("(no message)")
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			sb.WriteString(" [" + filepath.Base(src.File) + ":" + strconv.Itoa(src.Line) + "]")
		}
	}
	sb.WriteByte('\n')
}

// detailFields drops the header keys and collapses repeated keys in place,
// keeping the first position and the last value.
func detailFields(fields []field) []field {
	index := make(map[string]int, len(fields))
	out := make([]field, 0, len(fields))
	for _, f := range fields {
		switch f.key {
		case "", FieldComponent, FieldSessionID:
			continue
		}
		if i, ok := index[f.key]; ok {
			out[i].value = f.value
			continue
		}
		index[f.key] = len(out)
		out = append(out, f)
	}
	return out
}

func firstValue(fields []field, key string) string {
	for _, f := range fields {
		if f.key == key {
			return attrString(f.value)
		}
	}
	return ""
}

func appendFlattened(dst []field, prefix []string, attr slog.Attr) []field {
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix = append(append([]string(nil), prefix...), attr.Key)
		}
		for _, inner := range attr.Value.Group() {
			dst = appendFlattened(dst, prefix, inner)
		}
		return dst
	}
	key := attr.Key
	if len(prefix) > 0 {
		parts := append([]string(nil), prefix...)
		if key != "" {
			parts = append(parts, key)
		}
		key = strings.Join(parts, ".")
	}
	return append(dst, field{key: key, value: attr.Value})
}

// shortSession trims a UUID to its first group for console readability.
func shortSession(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
