package livelog

import (
	"sync"
	"time"
)

// Event is a fluent builder for a single record.
// API: logger.At(livelog.LevelInfo).Str("from", ...).Dur("took", d).Msg("state changed")
//
// At returns nil when the level is disabled; every method is a no-op on a
// nil Event, so disabled events cost neither field building nor formatting.
type Event struct {
	l      *Logger
	level  Level
	fields []Field
	errs   []any
}

var eventPool = sync.Pool{
	New: func() any { return &Event{fields: make([]Field, 0, 8)} },
}

// At starts an event at level.
func (l *Logger) At(level Level) *Event {
	if !l.Enabled(level) {
		return nil
	}
	ev := eventPool.Get().(*Event)
	ev.l = l
	ev.level = level
	ev.fields = ev.fields[:0]
	ev.errs = ev.errs[:0]
	return ev
}

func (e *Event) putBack() {
	// allow GC of large backing arrays by capping
	if cap(e.fields) > 128 {
		e.fields = make([]Field, 0, 8)
	}
	e.l = nil
	e.level = 0
	e.errs = e.errs[:0]
	eventPool.Put(e)
}

func (e *Event) add(f Field) *Event {
	if e != nil {
		e.fields = append(e.fields, f)
	}
	return e
}

func (e *Event) Str(k, v string) *Event               { return e.add(Str(k, v)) }
func (e *Event) Int(k string, v int) *Event           { return e.add(Int(k, v)) }
func (e *Event) Int64(k string, v int64) *Event       { return e.add(Int64(k, v)) }
func (e *Event) Uint64(k string, v uint64) *Event     { return e.add(Uint64(k, v)) }
func (e *Event) Float64(k string, v float64) *Event   { return e.add(Float64(k, v)) }
func (e *Event) Bool(k string, v bool) *Event         { return e.add(Bool(k, v)) }
func (e *Event) Dur(k string, v time.Duration) *Event { return e.add(Dur(k, v)) }
func (e *Event) Time(k string, v time.Time) *Event    { return e.add(Time(k, v)) }
func (e *Event) Bytes(k string, v []byte) *Event      { return e.add(Bytes(k, v)) }
func (e *Event) Any(k string, v any) *Event           { return e.add(FieldOf(k, v)) }

// Err attaches err as an error argument, so the first one becomes the
// record's error field and later ones go to other_errors.
func (e *Event) Err(err error) *Event {
	if e == nil || err == nil {
		return e
	}
	e.errs = append(e.errs, err)
	return e
}

// Msg terminates the builder and emits the event.
func (e *Event) Msg(msg string) {
	if e == nil {
		return
	}
	args := make([]any, 0, 2+len(e.errs))
	if msg != "" {
		args = append(args, msg)
	}
	args = append(args, e.errs...)
	if len(e.fields) > 0 {
		args = append(args, copyFields(nil, e.fields))
	}
	e.l.e.Log(e.level, args...)
	e.putBack()
}

// Send emits the event without a message text.
func (e *Event) Send() { e.Msg("") }
