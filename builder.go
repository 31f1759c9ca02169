package livelog

import (
	"time"

	"github.com/trickstertwo/xclock"
)

// Config for constructing a Logger (Factory data structure).
type Config struct {
	// LevelEnvs are the caller's level variables in priority order.
	LevelEnvs []string
	// Metadata is the immutable instance metadata.
	Metadata Metadata
	// WriteFunc receives formatted records; defaults to StderrWriteFunc.
	// It also receives configuration diagnostics.
	WriteFunc WriteFunc
	// DefaultFormat names the format used while LOG_FORMAT is unset.
	DefaultFormat string
	Formats       *Registry    // optional; defaults to DefaultFormats()
	Clock         xclock.Clock // optional; defaults to xclock.Default()
	// RefreshClock drives the reevaluation deadline. It defaults to the
	// system clock, not Clock, so a frozen timestamp clock keeps live
	// reconfiguration working.
	RefreshClock xclock.Clock

	LookupEnv      func(string) (string, bool)
	Interval       time.Duration
	GlobalLevelEnv string
	FormatEnv      string
	MetadataEnv    string

	Observers []Observer
}

// systemClock ignores xclock.SetDefault, which tests and demos use to
// freeze timestamps.
var systemClock = xclock.NewBuilder().Apply(xclock.WithStrategy(xclock.StrategySystem)).Build()

// Builder separates construction from representation (Builder pattern).
type Builder struct {
	cfg Config
}

func NewBuilder() *Builder {
	return &Builder{cfg: Config{DefaultFormat: DefaultFormatName}}
}

func (b *Builder) WithLevelEnvs(names ...string) *Builder {
	b.cfg.LevelEnvs = append(b.cfg.LevelEnvs, names...)
	return b
}

func (b *Builder) WithMetadata(md Metadata) *Builder {
	b.cfg.Metadata = b.cfg.Metadata.DeepMerge(md)
	return b
}

func (b *Builder) WithWriteFunc(fn WriteFunc) *Builder {
	b.cfg.WriteFunc = fn
	return b
}

func (b *Builder) WithDefaultFormat(name string) *Builder {
	b.cfg.DefaultFormat = name
	return b
}

func (b *Builder) WithFormats(r *Registry) *Builder {
	b.cfg.Formats = r
	return b
}

// WithClock sets the clock that stamps records. Refresh deadlines keep
// using the system clock unless WithRefreshClock is also set.
func (b *Builder) WithClock(c xclock.Clock) *Builder {
	b.cfg.Clock = c
	return b
}

// WithRefreshClock sets the clock that decides when the environment is
// re-read. A frozen refresh clock stops reevaluation after the first pass.
func (b *Builder) WithRefreshClock(c xclock.Clock) *Builder {
	b.cfg.RefreshClock = c
	return b
}

func (b *Builder) WithLookupEnv(fn func(string) (string, bool)) *Builder {
	b.cfg.LookupEnv = fn
	return b
}

func (b *Builder) WithInterval(d time.Duration) *Builder {
	b.cfg.Interval = d
	return b
}

func (b *Builder) WithGlobalLevelEnv(name string) *Builder {
	b.cfg.GlobalLevelEnv = name
	return b
}

func (b *Builder) WithFormatEnv(name string) *Builder {
	b.cfg.FormatEnv = name
	return b
}

func (b *Builder) WithMetadataEnv(name string) *Builder {
	b.cfg.MetadataEnv = name
	return b
}

func (b *Builder) AddObserver(o Observer) *Builder {
	b.cfg.Observers = append(b.cfg.Observers, o)
	return b
}

// Build constructs the Logger (Factory + Builder).
func (b *Builder) Build() (*Logger, error) { return New(b.cfg) }

// New validates cfg and builds a Logger. An unknown DefaultFormat or an
// empty env name fails here; nothing on the logging path returns errors.
func New(cfg Config) (*Logger, error) {
	formats := cfg.Formats
	if formats == nil {
		formats = DefaultFormats()
	}
	name := cfg.DefaultFormat
	if name == "" {
		name = DefaultFormatName
	}
	def, err := formats.Resolve(name)
	if err != nil {
		return nil, err
	}
	write := cfg.WriteFunc
	if write == nil {
		write = StderrWriteFunc
	}
	clock := cfg.Clock
	if clock == nil {
		clock = xclock.Default()
	}
	refresh := cfg.RefreshClock
	if refresh == nil {
		refresh = systemClock
	}

	var onChange func(ConfigChange)
	if len(cfg.Observers) > 0 {
		observers := append([]Observer(nil), cfg.Observers...)
		onChange = func(c ConfigChange) {
			for _, o := range observers {
				o.OnConfig(c)
			}
		}
	}

	live, err := NewLiveConfig(LiveConfigOptions{
		LevelEnvs:      cfg.LevelEnvs,
		GlobalLevelEnv: cfg.GlobalLevelEnv,
		FormatEnv:      cfg.FormatEnv,
		MetadataEnv:    cfg.MetadataEnv,
		Fallback:       write,
		DefaultFormat:  def,
		Formats:        formats,
		LookupEnv:      cfg.LookupEnv,
		Now:            refresh.Now,
		Interval:       cfg.Interval,
		OnChange:       onChange,
	})
	if err != nil {
		return nil, err
	}
	return newLogger(newEngine(live, cfg.Metadata, write, clock.Now, cfg.Observers)), nil
}
