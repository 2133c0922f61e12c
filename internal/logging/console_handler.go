package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one human-readable line per record:
//
//	2026-01-02T15:04:05Z INFO  [0123abcd transcribe] pipeline: message key=value | hint: ... | impact: ...
//
// job_id, stage, and component move into the prefix. event_type is dropped
// because it only matters for filtering JSON logs. error_hint and impact
// trail the line so warnings end with what to do about them.
type consoleHandler struct {
	mu        *sync.Mutex
	w         io.Writer
	level     slog.Leveler
	addSource bool
	prefix    string
	attrs     []slog.Attr
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{mu: &sync.Mutex{}, w: w, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	var line consoleLine
	for _, attr := range h.attrs {
		line.add("", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		line.add(h.prefix, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var buf bytes.Buffer
	buf.WriteString(ts.UTC().Format(time.RFC3339))
	fmt.Fprintf(&buf, " %-5s ", levelLabel(record.Level))
	if tag := line.tag(); tag != "" {
		buf.WriteString(tag)
		buf.WriteByte(' ')
	}
	if line.component != "" {
		buf.WriteString(line.component)
		buf.WriteString(": ")
	}
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "(no message)"
	}
	buf.WriteString(msg)

	if h.addSource && record.PC != 0 {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range line.fields {
		buf.WriteByte(' ')
		buf.WriteString(f.key)
		buf.WriteByte('=')
		buf.WriteString(formatValue(f.value))
	}
	if line.hint != "" {
		buf.WriteString(" | hint: ")
		buf.WriteString(line.hint)
	}
	if line.impact != "" {
		buf.WriteString(" | impact: ")
		buf.WriteString(line.impact)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, h.attrs...)
	for _, attr := range attrs {
		// Keep the group prefix that was active when the attrs were bound.
		clone.attrs = append(clone.attrs, slog.Attr{Key: joinKey(h.prefix, attr.Key), Value: attr.Value})
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

type consoleField struct {
	key   string
	value slog.Value
}

// consoleLine sorts a record's attrs into prefix parts, trailing guidance,
// and ordinary key=value fields. The first value for a prefix key wins.
type consoleLine struct {
	jobID     string
	stage     string
	component string
	hint      string
	impact    string
	fields    []consoleField
}

func (l *consoleLine) add(prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		group := joinKey(prefix, attr.Key)
		for _, member := range attr.Value.Group() {
			l.add(group, member)
		}
		return
	}

	key := joinKey(prefix, attr.Key)
	switch key {
	case FieldJobID:
		setOnce(&l.jobID, attr.Value.String())
	case FieldStage:
		setOnce(&l.stage, attr.Value.String())
	case FieldComponent:
		setOnce(&l.component, attr.Value.String())
	case FieldErrorHint:
		setOnce(&l.hint, attr.Value.String())
	case FieldImpact:
		setOnce(&l.impact, attr.Value.String())
	case FieldEventType:
	default:
		l.fields = append(l.fields, consoleField{key: key, value: attr.Value})
	}
}

// tag renders "[job stage]" with the job ID shortened to eight characters;
// JSON output keeps the full ID.
func (l *consoleLine) tag() string {
	job := l.jobID
	if len(job) > 8 {
		job = job[:8]
	}
	switch {
	case job != "" && l.stage != "":
		return "[" + job + " " + l.stage + "]"
	case job != "":
		return "[" + job + "]"
	case l.stage != "":
		return "[" + l.stage + "]"
	default:
		return ""
	}
}

func setOnce(dst *string, value string) {
	if *dst == "" {
		*dst = strings.TrimSpace(value)
	}
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + "." + key
	}
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' || r == '|' {
			return true
		}
	}
	return false
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
