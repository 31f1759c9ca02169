package livelog

import (
	"sync"
	"sync/atomic"
	"time"
)

// Engine gates, normalizes, formats and writes records. Engines derived
// with Tag or WithMetadata share the parent's LiveConfig by reference.
type Engine struct {
	live     *LiveConfig
	instance Metadata
	write    WriteFunc
	now      func() time.Time

	// Observers: lock-free reads via atomic.Value; synchronized updates via obsMu.
	// Stored value is []Observer and MUST be treated as immutable by readers.
	observers atomic.Value // holds []Observer
	obsMu     sync.Mutex
}

func newEngine(live *LiveConfig, instance Metadata, write WriteFunc, now func() time.Time, observers []Observer) *Engine {
	e := &Engine{
		live:     live,
		instance: instance.deepClone(),
		write:    write,
		now:      now,
	}
	if len(observers) > 0 {
		obs := make([]Observer, len(observers))
		copy(obs, observers)
		e.observers.Store(obs)
	} else {
		e.observers.Store(([]Observer)(nil))
	}
	return e
}

// LiveConfig returns the shared configuration cache.
func (e *Engine) LiveConfig() *LiveConfig { return e.live }

func (e *Engine) Level() Level { return e.live.Level() }

func (e *Engine) FormatName() string { return e.live.Format().Name() }

// Metadata returns instance metadata overridden by environment metadata,
// except for the instance tag.
func (e *Engine) Metadata() Metadata {
	return EffectiveMetadata(e.instance, e.live.Snapshot().Metadata)
}

// IsDebug reports whether the threshold is debug or more verbose.
func (e *Engine) IsDebug() bool {
	return e.Level().Rank() >= LevelDebug.Rank()
}

// Enabled refreshes the configuration if stale and reports whether a
// record at level would be written.
func (e *Engine) Enabled(level Level) bool {
	e.live.ReevaluateIfStale()
	return IsAtLeastAsVerbose(level, e.live.Level())
}

// Log writes args as one record when level passes the threshold.
func (e *Engine) Log(level Level, args ...any) {
	e.live.ReevaluateIfStale()
	if len(args) == 0 {
		return
	}
	snap := e.live.Snapshot()
	if !IsAtLeastAsVerbose(level, snap.Level) {
		return
	}
	e.emit(snap, level, args)
}

// LogGen calls gen only when level passes the threshold.
func (e *Engine) LogGen(level Level, gen func() []any) {
	e.live.ReevaluateIfStale()
	snap := e.live.Snapshot()
	if gen == nil || !IsAtLeastAsVerbose(level, snap.Level) {
		return
	}
	e.emit(snap, level, gen())
}

func (e *Engine) emit(snap *Snapshot, level Level, args []any) {
	msg := Parse(level, e.now(), args)
	if msg == nil {
		return
	}
	line := snap.Format.Format(msg, EffectiveMetadata(e.instance, snap.Metadata))
	e.write(line)

	v := e.observers.Load()
	if v == nil {
		return
	}
	obs := v.([]Observer)
	if len(obs) == 0 {
		return
	}
	entry := Entry{
		At:      msg.Time(),
		Level:   level,
		Format:  snap.Format.Name(),
		Line:    line,
		Message: msg,
	}
	for _, o := range obs {
		o.OnLog(entry)
	}
}

// WithMetadata returns an engine whose instance metadata is e's deep-merged
// with md. The LiveConfig is shared, not copied.
func (e *Engine) WithMetadata(md Metadata) *Engine {
	return newEngine(e.live, e.instance.DeepMerge(md), e.write, e.now, e.snapshotObservers())
}

// Tag returns an engine whose instance tag is name.
func (e *Engine) Tag(name string) *Engine {
	return e.WithMetadata(Metadata{MetaTag: name})
}

func (e *Engine) snapshotObservers() []Observer {
	v := e.observers.Load()
	if v == nil {
		return nil
	}
	cur := v.([]Observer)
	if len(cur) == 0 {
		return nil
	}
	out := make([]Observer, len(cur))
	copy(out, cur)
	return out
}

// AddObserver registers o for records written by this engine. Derived
// engines inherit the observers present at derivation time.
func (e *Engine) AddObserver(o Observer) {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()
	cur := e.snapshotObservers()
	cur = append(cur, o)
	e.observers.Store(cur)
}
