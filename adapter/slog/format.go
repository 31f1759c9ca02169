package slogadapter

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/trickstertwo/livelog"
)

// FormatText is the format name registered by this package.
const FormatText = "slog_text"

// TextFormatter renders records with slog.TextHandler, using livelog key
// names and npm level names.
type TextFormatter struct {
	mu  sync.Mutex
	buf bytes.Buffer
	h   slog.Handler
}

func NewTextFormatter() *TextFormatter {
	f := &TextFormatter{}
	f.h = slog.NewTextHandler(&f.buf, &slog.HandlerOptions{
		Level:       slog.Level(-128),
		ReplaceAttr: replaceBuiltins,
	})
	return f
}

func (f *TextFormatter) Name() string { return FormatText }

func (f *TextFormatter) Format(msg *livelog.Message, md livelog.Metadata) string {
	r := slog.NewRecord(msg.Time(), ToSlogLevel(msg.Level()), msg.Text(), 0)
	fields := livelog.OutputFields(md, msg)
	for i := range fields {
		switch fields[i].K {
		case livelog.KeyTimeISO, livelog.KeyLevel, livelog.KeyMessage:
			continue
		}
		r.AddAttrs(slog.Any(fields[i].K, fields[i].Value()))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf.Reset()
	if err := f.h.Handle(context.Background(), r); err != nil {
		return "livelog: slog text: " + err.Error()
	}
	return strings.TrimSuffix(f.buf.String(), "\n")
}

func replaceBuiltins(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String(livelog.KeyTimeISO, a.Value.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	case slog.LevelKey:
		if lv, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(livelog.KeyLevel, levelName(lv))
		}
	case slog.MessageKey:
		a.Key = livelog.KeyMessage
	}
	return a
}

// Blank-importing this package makes slog_text selectable through
// LOG_FORMAT.
func init() {
	if err := Register(livelog.DefaultFormats()); err != nil {
		panic(err)
	}
}

// Register adds slog_text to r.
func Register(r *livelog.Registry) error {
	return r.Register(NewTextFormatter())
}

// levelName inverts ToSlogLevel exactly, so http and verbose keep their names.
func levelName(lv slog.Level) string {
	for _, l := range livelog.Levels() {
		if ToSlogLevel(l) == lv {
			return l.String()
		}
	}
	return FromSlogLevel(lv).String()
}
