package slogadapter

import (
	"context"
	"log/slog"

	"github.com/trickstertwo/livelog"
)

// Handler routes slog records into a livelog Logger, so code written
// against log/slog shares the live level and format.
//
// Attributes become record fields; group names prefix their keys with
// "group.".
type Handler struct {
	l      *livelog.Logger
	bound  []livelog.Field
	prefix string
}

func NewHandler(l *livelog.Logger) *Handler {
	return &Handler{l: l}
}

// New returns a *slog.Logger backed by l.
func New(l *livelog.Logger) *slog.Logger {
	return slog.New(NewHandler(l))
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return h.l.Enabled(FromSlogLevel(level))
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]livelog.Field, 0, len(h.bound)+r.NumAttrs())
	fields = append(fields, h.bound...)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, a)
		return true
	})
	args := make([]any, 0, 2)
	if r.Message != "" {
		args = append(args, r.Message)
	}
	if len(fields) > 0 {
		args = append(args, fields)
	}
	h.l.DoLog(FromSlogLevel(r.Level), args...)
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	child := *h
	child.bound = append([]livelog.Field(nil), h.bound...)
	for _, a := range attrs {
		child.bound = appendAttr(child.bound, h.prefix, a)
	}
	return &child
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	child := *h
	child.prefix = h.prefix + name + "."
	return &child
}

func appendAttr(dst []livelog.Field, prefix string, a slog.Attr) []livelog.Field {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	key := prefix + a.Key
	switch v.Kind() {
	case slog.KindGroup:
		inner := prefix
		if a.Key != "" {
			inner = key + "."
		}
		for _, ga := range v.Group() {
			dst = appendAttr(dst, inner, ga)
		}
		return dst
	case slog.KindString:
		return append(dst, livelog.Str(key, v.String()))
	case slog.KindInt64:
		return append(dst, livelog.Int64(key, v.Int64()))
	case slog.KindUint64:
		return append(dst, livelog.Uint64(key, v.Uint64()))
	case slog.KindFloat64:
		return append(dst, livelog.Float64(key, v.Float64()))
	case slog.KindBool:
		return append(dst, livelog.Bool(key, v.Bool()))
	case slog.KindDuration:
		return append(dst, livelog.Dur(key, v.Duration()))
	case slog.KindTime:
		return append(dst, livelog.Time(key, v.Time()))
	default:
		return append(dst, livelog.FieldOf(key, v.Any()))
	}
}

// FromSlogLevel maps a slog level onto the nearest npm level at or below
// its severity.
func FromSlogLevel(l slog.Level) livelog.Level {
	switch {
	case l >= slog.LevelError:
		return livelog.LevelError
	case l >= slog.LevelWarn:
		return livelog.LevelWarn
	case l >= slog.LevelInfo:
		return livelog.LevelInfo
	case l >= slog.LevelDebug:
		return livelog.LevelDebug
	default:
		return livelog.LevelSilly
	}
}

// ToSlogLevel maps npm levels onto slog levels; http and verbose sit
// between info and debug.
func ToSlogLevel(l livelog.Level) slog.Level {
	switch l {
	case livelog.LevelError:
		return slog.LevelError
	case livelog.LevelWarn:
		return slog.LevelWarn
	case livelog.LevelInfo:
		return slog.LevelInfo
	case livelog.LevelHTTP:
		return slog.LevelInfo - 1
	case livelog.LevelVerbose:
		return slog.LevelInfo - 2
	case livelog.LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}
