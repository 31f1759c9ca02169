package livelog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/trickstertwo/xclock"
)

// Environment variable names and refresh interval used when not overridden.
const (
	DefaultGlobalLevelEnv     = "LOG_LEVEL"
	DefaultFormatEnv          = "LOG_FORMAT"
	DefaultMetadataEnv        = "LOG_METADATA"
	DefaultReevaluateInterval = 150 * time.Millisecond
)

// WriteFunc receives one formatted record.
type WriteFunc func(line string)

// LiveConfigOptions configures a LiveConfig. Zero values select defaults.
type LiveConfigOptions struct {
	// LevelEnvs are consulted for the level; the most verbose set value wins.
	LevelEnvs []string
	// GlobalLevelEnv is used only when none of LevelEnvs is set.
	GlobalLevelEnv string
	FormatEnv      string
	MetadataEnv    string

	// Fallback reports evaluation problems. Defaults to StderrWriteFunc.
	Fallback WriteFunc
	// DefaultFormat is active while FormatEnv is unset. Defaults to oneline.
	DefaultFormat Formatter
	// Formats resolves FormatEnv values. Defaults to DefaultFormats().
	Formats *Registry

	LookupEnv func(string) (string, bool) // default os.LookupEnv
	Now       func() time.Time            // default xclock.Default().Now
	Interval  time.Duration               // default DefaultReevaluateInterval

	// OnChange is called after every evaluation pass, outside the lock.
	OnChange func(ConfigChange)
}

// Snapshot is one consistent evaluation of the environment.
// Metadata must be treated as read-only.
type Snapshot struct {
	Level       Level
	Format      Formatter
	Metadata    Metadata
	EvaluatedAt time.Time
}

// LiveConfig caches level, format and metadata derived from the
// environment and re-derives them once the cached deadline has passed.
type LiveConfig struct {
	globalLevelEnv string
	formatEnv      string
	metadataEnv    string
	fallback       WriteFunc
	defaultFormat  Formatter
	formats        *Registry
	lookup         func(string) (string, bool)
	now            func() time.Time
	interval       time.Duration
	onChange       func(ConfigChange)

	// mu guards levelEnvs and the check-deadline/evaluate/publish sequence.
	mu        sync.Mutex
	levelEnvs []string
	deadline  atomic.Int64 // unix nanos of the next reevaluation
	snap      atomic.Pointer[Snapshot]
}

// NewLiveConfig validates opts and runs the first evaluation immediately.
func NewLiveConfig(opts LiveConfigOptions) (*LiveConfig, error) {
	c := &LiveConfig{
		globalLevelEnv: orDefault(opts.GlobalLevelEnv, DefaultGlobalLevelEnv),
		formatEnv:      orDefault(opts.FormatEnv, DefaultFormatEnv),
		metadataEnv:    orDefault(opts.MetadataEnv, DefaultMetadataEnv),
		fallback:       opts.Fallback,
		defaultFormat:  opts.DefaultFormat,
		formats:        opts.Formats,
		lookup:         opts.LookupEnv,
		now:            opts.Now,
		interval:       opts.Interval,
		onChange:       opts.OnChange,
	}
	if err := validateEnvNames(opts.LevelEnvs); err != nil {
		return nil, err
	}
	c.levelEnvs = append([]string(nil), opts.LevelEnvs...)
	if c.fallback == nil {
		c.fallback = StderrWriteFunc
	}
	if c.formats == nil {
		c.formats = DefaultFormats()
	}
	if c.defaultFormat == nil {
		f, err := c.formats.Resolve(DefaultFormatName)
		if err != nil {
			return nil, err
		}
		c.defaultFormat = f
	}
	if c.lookup == nil {
		c.lookup = os.LookupEnv
	}
	if c.now == nil {
		c.now = xclock.Default().Now
	}
	if c.interval <= 0 {
		c.interval = DefaultReevaluateInterval
	}
	c.ReevaluateIfStale()
	return c, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func validateEnvNames(names []string) error {
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return fmt.Errorf("%w: level env #%d", ErrEmptyEnvName, i)
		}
	}
	return nil
}

// Snapshot returns the last published evaluation.
func (c *LiveConfig) Snapshot() *Snapshot { return c.snap.Load() }

func (c *LiveConfig) Level() Level { return c.Snapshot().Level }

func (c *LiveConfig) Format() Formatter { return c.Snapshot().Format }

// Metadata returns a copy of the environment metadata.
func (c *LiveConfig) Metadata() Metadata { return c.Snapshot().Metadata.Clone() }

// IsStale reports whether the cache must be re-derived at now.
func (c *LiveConfig) IsStale(now time.Time) bool {
	return now.UnixNano() >= c.deadline.Load()
}

// ReevaluateIfStale re-derives the configuration when the deadline passed.
func (c *LiveConfig) ReevaluateIfStale() {
	if !c.IsStale(c.now()) {
		return
	}
	c.mu.Lock()
	now := c.now()
	if !c.IsStale(now) {
		c.mu.Unlock()
		return
	}
	change := c.reevaluateLocked(now)
	c.mu.Unlock()
	c.notify(change)
}

// Reevaluate re-derives the configuration regardless of the deadline.
func (c *LiveConfig) Reevaluate() {
	c.mu.Lock()
	change := c.reevaluateLocked(c.now())
	c.mu.Unlock()
	c.notify(change)
}

// SetLevelEnvs replaces the level env list and reevaluates.
func (c *LiveConfig) SetLevelEnvs(names []string) error {
	if err := validateEnvNames(names); err != nil {
		return err
	}
	c.mu.Lock()
	c.levelEnvs = append([]string(nil), names...)
	change := c.reevaluateLocked(c.now())
	c.mu.Unlock()
	c.notify(change)
	return nil
}

func (c *LiveConfig) notify(change *ConfigChange) {
	if change == nil || c.onChange == nil {
		return
	}
	c.onChange(*change)
}

// reevaluateLocked moves the deadline first so a failing environment is
// not re-read on every call, then publishes the new snapshot in one store.
func (c *LiveConfig) reevaluateLocked(now time.Time) (change *ConfigChange) {
	c.deadline.Store(now.Add(c.interval).UnixNano())
	prev := c.snap.Load()
	defer func() {
		if r := recover(); r != nil {
			err := errors.Errorf("panic: %v", r)
			c.report(fmt.Sprintf("%+v", err))
			if prev == nil {
				c.snap.Store(c.initialSnapshot(now))
			}
			change = &ConfigChange{Old: prev, New: c.snap.Load(), Errs: []error{err}}
		}
	}()
	next, errs := c.evaluate(now, prev)
	for _, err := range errs {
		c.report(err.Error())
	}
	c.snap.Store(next)
	return &ConfigChange{Old: prev, New: next, Errs: errs}
}

func (c *LiveConfig) initialSnapshot(now time.Time) *Snapshot {
	return &Snapshot{Level: DefaultLevel, Format: c.defaultFormat, Metadata: Metadata{}, EvaluatedAt: now}
}

func (c *LiveConfig) evaluate(now time.Time, prev *Snapshot) (*Snapshot, []error) {
	if prev == nil {
		prev = c.initialSnapshot(now)
	}
	next := &Snapshot{EvaluatedAt: now}
	var errs []error

	format, err := c.evaluateFormat()
	if err != nil {
		errs = append(errs, errors.Wrapf(err, "evaluate %s", c.formatEnv))
		format = prev.Format
	}
	next.Format = format

	level, err := c.evaluateLevel()
	if err != nil {
		errs = append(errs, err)
		level = prev.Level
	}
	next.Level = level

	md, err := c.evaluateMetadata()
	if err != nil {
		errs = append(errs, errors.Wrapf(err, "evaluate %s", c.metadataEnv))
	}
	next.Metadata = md
	return next, errs
}

func (c *LiveConfig) evaluateFormat() (Formatter, error) {
	name, ok := c.env(c.formatEnv)
	if !ok {
		return c.defaultFormat, nil
	}
	return c.formats.Resolve(strings.TrimSpace(name))
}

func (c *LiveConfig) evaluateLevel() (Level, error) {
	if level, ok, err := c.mostVerboseOf(c.levelEnvs); ok || err != nil {
		return level, err
	}
	if level, ok, err := c.mostVerboseOf([]string{c.globalLevelEnv}); ok || err != nil {
		return level, err
	}
	return DefaultLevel, nil
}

// mostVerboseOf parses every set variable in names. ok is false when none
// is set.
func (c *LiveConfig) mostVerboseOf(names []string) (level Level, ok bool, err error) {
	levels := make([]Level, 0, len(names))
	for _, n := range names {
		v, set := c.env(n)
		if !set {
			continue
		}
		l, perr := ParseLevel(v)
		if perr != nil {
			return 0, false, errors.Wrapf(perr, "evaluate %s", n)
		}
		levels = append(levels, l)
	}
	if len(levels) == 0 {
		return 0, false, nil
	}
	return MostVerbose(levels...), true, nil
}

func (c *LiveConfig) evaluateMetadata() (Metadata, error) {
	raw, ok := c.env(c.metadataEnv)
	if !ok {
		return Metadata{}, nil
	}
	var md Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		return Metadata{}, errors.Wrap(err, "metadata is not a JSON object")
	}
	if md == nil {
		md = Metadata{}
	}
	return md, nil
}

// env treats empty values as unset.
func (c *LiveConfig) env(name string) (string, bool) {
	v, ok := c.lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// report never lets a failing fallback sink escape.
func (c *LiveConfig) report(msg string) {
	defer func() { _ = recover() }()
	c.fallback("livelog: could not evaluate live log config: " + msg)
}
