package livelog

import (
	"sort"
	"strings"

	"dario.cat/mergo"
	"github.com/spf13/cast"
)

// Conventional metadata keys used to build a line identifier.
const (
	MetaProject     = "project"
	MetaEnvironment = "environment"
	MetaService     = "service"
	MetaModule      = "module"
	MetaTag         = "tag"
	MetaLibrary     = "library"
)

// EmptyIdentifier is printed by oneline when no identifying key is set.
const EmptyIdentifier = "livelog-empty-id"

// Metadata is descriptive context attached to every line.
type Metadata map[string]any

func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Str returns the value under key rendered as a string, "" when absent.
func (m Metadata) Str(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// Identifier builds "<service|project>.<module>.[<library>].<tag>",
// skipping absent parts.
func (m Metadata) Identifier() string {
	var b strings.Builder
	if s := m.Str(MetaService); s != "" {
		b.WriteString(s)
		b.WriteByte('.')
	} else if p := m.Str(MetaProject); p != "" {
		b.WriteString(p)
		b.WriteByte('.')
	}
	if s := m.Str(MetaModule); s != "" {
		b.WriteString(s)
		b.WriteByte('.')
	}
	if s := m.Str(MetaLibrary); s != "" {
		b.WriteByte('[')
		b.WriteString(s)
		b.WriteString("].")
	}
	b.WriteString(m.Str(MetaTag))
	if b.Len() == 0 {
		return EmptyIdentifier
	}
	return b.String()
}

// Fields returns the metadata as fields in key order.
func (m Metadata) Fields() []Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, FieldOf(k, m[k]))
	}
	return out
}

// Merge returns m with every top-level key of other replacing m's value.
// Nested maps are replaced, not merged. Neither input is modified.
func (m Metadata) Merge(other Metadata) Metadata {
	out := make(Metadata, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// DeepMerge returns m with other merged in recursively: nested maps are
// combined, scalar values from other win. Both inputs are deep-copied
// first, so the result shares no maps with either.
func (m Metadata) DeepMerge(other Metadata) Metadata {
	out := m.deepClone()
	if len(other) == 0 {
		return out
	}
	src := other.deepClone()
	if err := mergo.Merge(&out, src, mergo.WithOverride); err != nil {
		return m.Merge(other)
	}
	return out
}

func (m Metadata) deepClone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch vv := v.(type) {
	case map[string]any:
		return map[string]any(Metadata(vv).deepClone())
	case Metadata:
		return vv.deepClone()
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// EffectiveMetadata merges live (environment) metadata over instance
// metadata. The instance tag always wins so sub-loggers keep their name.
func EffectiveMetadata(instance, live Metadata) Metadata {
	out := instance.Merge(live)
	if tag, ok := instance[MetaTag]; ok {
		out[MetaTag] = tag
	}
	return out
}
