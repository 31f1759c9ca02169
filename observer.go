package livelog

import (
	"time"
)

// Entry is a read-only view of one written record.
type Entry struct {
	At      time.Time
	Level   Level
	Format  string
	Line    string
	Message *Message
}

// ConfigChange describes one evaluation pass of a LiveConfig. Old is nil
// on the first pass.
type ConfigChange struct {
	Old  *Snapshot
	New  *Snapshot
	Errs []error
}

// Changed reports whether the level or the active format differs from the
// previous pass.
func (c ConfigChange) Changed() bool {
	if c.Old == nil || c.New == nil {
		return c.Old != c.New
	}
	return c.Old.Level != c.New.Level || c.Old.Format.Name() != c.New.Format.Name()
}

// Observer receives notifications for written records and configuration
// evaluations. Implementations MUST be concurrency-safe and must not log
// through the logger that notifies them.
type Observer interface {
	OnLog(e Entry)
	OnConfig(c ConfigChange)
}

// ObserverFunc observes written records only.
type ObserverFunc func(Entry)

func (f ObserverFunc) OnLog(e Entry)         { f(e) }
func (f ObserverFunc) OnConfig(ConfigChange) {}
