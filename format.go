package livelog

import (
	"fmt"
	"sort"
	"sync"
)

// Built-in format names.
const (
	FormatJSON       = "json"
	FormatJSONPretty = "json_pretty"
	FormatOneline    = "oneline"
	FormatLogfmt     = "logfmt"

	DefaultFormatName = FormatOneline
)

// Formatter renders a record and its metadata into one wire string.
// Implementations must be safe for concurrent use.
type Formatter interface {
	Name() string
	Format(msg *Message, md Metadata) string
}

type funcFormatter struct {
	name string
	fn   func(*Message, Metadata) string
}

func (f funcFormatter) Name() string                            { return f.name }
func (f funcFormatter) Format(msg *Message, md Metadata) string { return f.fn(msg, md) }

// NewFormatter adapts a function into a named Formatter.
func NewFormatter(name string, fn func(*Message, Metadata) string) Formatter {
	return funcFormatter{name: name, fn: fn}
}

// Registry maps format names to formatters.
type Registry struct {
	mu      sync.RWMutex
	formats map[string]Formatter
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{formats: make(map[string]Formatter)}
}

// BuiltinFormats returns a registry holding the formats of this package.
func BuiltinFormats() *Registry {
	r := NewRegistry()
	r.formats[FormatJSON] = NewJSONFormatter(false)
	r.formats[FormatJSONPretty] = NewJSONFormatter(true)
	r.formats[FormatOneline] = NewOnelineFormatter(OnelineOptions{})
	r.formats[FormatLogfmt] = NewLogfmtFormatter()
	return r
}

// Register adds f under f.Name().
func (r *Registry) Register(f Formatter) error {
	if f == nil {
		return ErrNoFormatter
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.formats[f.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFormat, f.Name())
	}
	r.formats[f.Name()] = f
	return nil
}

// Replace adds f, overwriting any formatter with the same name.
func (r *Registry) Replace(f Formatter) error {
	if f == nil {
		return ErrNoFormatter
	}
	r.mu.Lock()
	r.formats[f.Name()] = f
	r.mu.Unlock()
	return nil
}

// Resolve returns the formatter registered under name.
func (r *Registry) Resolve(name string) (Formatter, error) {
	r.mu.RLock()
	f, ok := r.formats[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownFormatError{Name: name, Available: r.Names()}
	}
	return f, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.formats))
	for n := range r.formats {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var defaultFormats = BuiltinFormats()

// DefaultFormats is the process-wide registry used when a Builder has no
// registry of its own. Adapter packages add their formats to it from init().
func DefaultFormats() *Registry { return defaultFormats }

// RegisterFormat adds f to DefaultFormats.
func RegisterFormat(f Formatter) error { return defaultFormats.Register(f) }
