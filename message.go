package livelog

import (
	"time"

	"github.com/spf13/cast"
)

// Record keys. They are part of the JSON compatibility surface.
const (
	KeyTimeISO     = "time_iso"
	KeyTimestamp   = "timestamp"
	KeyLevel       = "level"
	KeyLevelValue  = "level_value"
	KeyMessage     = "message"
	KeyError       = "error"
	KeyOtherErrors = "other_errors"
	KeyOthers      = "others"
)

// isoLayout matches the millisecond ISO-8601 form used for time_iso.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// ErrorInfo is the structured form of an error argument.
type ErrorInfo struct {
	Name    string     `json:"name"`
	Message string     `json:"message"`
	Stack   string     `json:"stack,omitempty"`
	Cause   *ErrorInfo `json:"cause,omitempty"`
}

// Message is the structured record built for one log call. Keys keep
// insertion order; setting an existing key replaces its value in place.
type Message struct {
	at     time.Time
	level  Level
	fields []Field
	index  map[string]int
}

func newMessage(level Level, at time.Time) *Message {
	m := &Message{
		at:     at,
		level:  level,
		fields: make([]Field, 0, 8),
		index:  make(map[string]int, 8),
	}
	m.Set(Str(KeyTimeISO, at.UTC().Format(isoLayout)))
	m.Set(Int64(KeyTimestamp, at.UnixMilli()))
	m.Set(Str(KeyLevel, level.String()))
	m.Set(Int64(KeyLevelValue, int64(level.Rank())))
	return m
}

// Set adds f or replaces the field with the same key.
func (m *Message) Set(f Field) {
	if i, ok := m.index[f.K]; ok {
		m.fields[i] = f
		return
	}
	m.index[f.K] = len(m.fields)
	m.fields = append(m.fields, f)
}

func (m *Message) Get(key string) (Field, bool) {
	i, ok := m.index[key]
	if !ok {
		return Field{}, false
	}
	return m.fields[i], true
}

// Fields returns the record in key order. Callers must not modify it.
func (m *Message) Fields() []Field { return m.fields }

func (m *Message) Len() int { return len(m.fields) }

func (m *Message) Level() Level { return m.level }

func (m *Message) Time() time.Time { return m.at }

// TimeISO returns the time_iso field, falling back to the stamp time.
func (m *Message) TimeISO() string {
	if f, ok := m.Get(KeyTimeISO); ok {
		if s := cast.ToString(f.Value()); s != "" {
			return s
		}
	}
	return m.at.UTC().Format(isoLayout)
}

// Text returns the message field as a string.
func (m *Message) Text() string {
	f, ok := m.Get(KeyMessage)
	if !ok {
		return ""
	}
	return cast.ToString(f.Value())
}

// LevelName returns the level field, which field-map arguments may override.
func (m *Message) LevelName() string {
	if f, ok := m.Get(KeyLevel); ok {
		return cast.ToString(f.Value())
	}
	return m.level.String()
}

// Err returns the first error argument, if any.
func (m *Message) Err() *ErrorInfo {
	f, ok := m.Get(KeyError)
	if !ok {
		return nil
	}
	info, _ := f.Any.(*ErrorInfo)
	return info
}

func (m *Message) OtherErrors() []*ErrorInfo {
	f, ok := m.Get(KeyOtherErrors)
	if !ok {
		return nil
	}
	out, _ := f.Any.([]*ErrorInfo)
	return out
}

func (m *Message) Others() []any {
	f, ok := m.Get(KeyOthers)
	if !ok {
		return nil
	}
	out, _ := f.Any.([]any)
	return out
}
