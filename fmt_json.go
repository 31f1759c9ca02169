package livelog

import (
	"bytes"
	"encoding/json"
	"time"
)

// JSONFormatter renders metadata and record fields as one JSON object.
// Record fields win over metadata keys.
type JSONFormatter struct {
	pretty bool
}

func NewJSONFormatter(pretty bool) *JSONFormatter { return &JSONFormatter{pretty: pretty} }

func (f *JSONFormatter) Name() string {
	if f.pretty {
		return FormatJSONPretty
	}
	return FormatJSON
}

// Format returns a minified object, or for pretty output an indented
// object followed by a newline so consecutive records are separated by an
// empty line.
func (f *JSONFormatter) Format(msg *Message, md Metadata) string {
	buf := getBuf()
	defer putBuf(buf)
	writeJSONObject(buf, OutputFields(md, msg))
	if !f.pretty {
		return string(buf.b)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.b, "", "  "); err != nil {
		return string(buf.b) + "\n"
	}
	out.WriteByte('\n')
	return out.String()
}

// OutputFields returns the fields of one output record: metadata first,
// then record fields. A record field replaces a metadata field with the
// same key in place.
func OutputFields(md Metadata, msg *Message) []Field {
	out := md.Fields()
	pos := make(map[string]int, len(out))
	for i := range out {
		pos[out[i].K] = i
	}
	for _, f := range msg.Fields() {
		if i, ok := pos[f.K]; ok {
			out[i] = f
			continue
		}
		out = append(out, f)
	}
	return out
}

func writeJSONObject(buf *buffer, fields []Field) {
	buf.writeByte('{')
	for i := range fields {
		if i > 0 {
			buf.writeByte(',')
		}
		appendQuoted(buf, fields[i].K)
		buf.writeByte(':')
		appendJSONValue(buf, &fields[i])
	}
	buf.writeByte('}')
}

func appendJSONValue(buf *buffer, f *Field) {
	switch f.Kind {
	case KindString:
		appendQuoted(buf, f.Str)
	case KindInt64:
		appendInt64(buf, f.Int64)
	case KindUint64:
		appendUint64(buf, f.Uint64)
	case KindFloat64:
		appendJSONFloat(buf, f.Float64, 64)
	case KindBool:
		if f.Bool {
			buf.writeBytes(jsonTrue)
		} else {
			buf.writeBytes(jsonFalse)
		}
	case KindDuration:
		appendQuoted(buf, f.Dur.String())
	case KindTime:
		buf.writeByte('"')
		appendRFC3339Nano(buf, f.Time)
		buf.writeByte('"')
	case KindError:
		if f.Err != nil {
			appendQuoted(buf, errorText(f.Err))
		} else {
			buf.writeBytes(jsonNull)
		}
	case KindBytes:
		appendBase64(buf, f.Bytes)
	case KindAny:
		appendJSONAny(buf, f.Any)
	default:
		buf.writeBytes(jsonNull)
	}
}

func appendJSONAny(buf *buffer, v any) {
	switch vv := v.(type) {
	case nil:
		buf.writeBytes(jsonNull)
	case string:
		appendQuoted(buf, vv)
	case bool:
		if vv {
			buf.writeBytes(jsonTrue)
		} else {
			buf.writeBytes(jsonFalse)
		}
	case int:
		appendInt64(buf, int64(vv))
	case int64:
		appendInt64(buf, vv)
	case float32:
		appendJSONFloat(buf, float64(vv), 32)
	case float64:
		appendJSONFloat(buf, vv, 64)
	case time.Time:
		buf.writeByte('"')
		appendRFC3339Nano(buf, vv)
		buf.writeByte('"')
	case time.Duration:
		appendQuoted(buf, vv.String())
	case error:
		appendQuoted(buf, errorText(vv))
	case []any:
		// Element-wise, so one value json cannot encode only nulls itself.
		buf.writeByte('[')
		for i, e := range vv {
			if i > 0 {
				buf.writeByte(',')
			}
			appendJSONAny(buf, e)
		}
		buf.writeByte(']')
	default:
		if data, err := json.Marshal(vv); err == nil {
			buf.writeBytes(data)
		} else {
			buf.writeBytes(jsonNull)
		}
	}
}
