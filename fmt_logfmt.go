package livelog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// LogfmtFormatter renders the record as space separated key=value pairs
// in the same field order as the json format.
type LogfmtFormatter struct{}

func NewLogfmtFormatter() *LogfmtFormatter { return &LogfmtFormatter{} }

func (f *LogfmtFormatter) Name() string { return FormatLogfmt }

func (f *LogfmtFormatter) Format(msg *Message, md Metadata) string {
	buf := getBuf()
	defer putBuf(buf)
	fields := OutputFields(md, msg)
	for i := range fields {
		if i > 0 {
			buf.writeByte(' ')
		}
		buf.writeString(fields[i].K)
		buf.writeByte('=')
		appendTextValue(buf, &fields[i])
	}
	return string(buf.b)
}

var (
	textTrue      = []byte("true")
	textFalse     = []byte("false")
	textNull      = []byte("null")
	textLenPrefix = []byte("len:")
)

func appendTextValue(buf *buffer, f *Field) {
	switch f.Kind {
	case KindString:
		appendTextString(buf, f.Str)
	case KindInt64:
		appendInt64(buf, f.Int64)
	case KindUint64:
		appendUint64(buf, f.Uint64)
	case KindFloat64:
		appendTextFloat(buf, f.Float64)
	case KindBool:
		if f.Bool {
			buf.writeBytes(textTrue)
		} else {
			buf.writeBytes(textFalse)
		}
	case KindDuration:
		buf.writeString(f.Dur.String())
	case KindTime:
		appendRFC3339Nano(buf, f.Time)
	case KindError:
		if f.Err != nil {
			appendQuoted(buf, errorText(f.Err))
		} else {
			buf.writeBytes(textNull)
		}
	case KindBytes:
		buf.writeBytes(textLenPrefix)
		appendInt64(buf, int64(len(f.Bytes)))
	case KindAny:
		appendTextAny(buf, f.Any)
	default:
		buf.writeBytes(textNull)
	}
}

func appendTextAny(buf *buffer, v any) {
	switch vv := v.(type) {
	case nil:
		buf.writeBytes(textNull)
	case *ErrorInfo:
		appendTextString(buf, vv.Message)
	case []*ErrorInfo:
		msgs := make([]string, len(vv))
		for i, e := range vv {
			msgs[i] = e.Message
		}
		appendTextString(buf, strings.Join(msgs, messageSeparator))
	case time.Time:
		appendRFC3339Nano(buf, vv)
	default:
		if s, err := cast.ToStringE(vv); err == nil {
			appendTextString(buf, s)
			return
		}
		if data, err := json.Marshal(vv); err == nil {
			appendTextString(buf, string(data))
			return
		}
		buf.writeString("unknown")
	}
}

// appendTextString quotes s only when it holds spaces, quotes or control bytes.
func appendTextString(buf *buffer, s string) {
	if s == "" {
		buf.writeString(`""`)
		return
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x1F || c == ' ' || c == '"' || c == '=' {
			appendQuoted(buf, s)
			return
		}
	}
	buf.writeString(s)
}

func appendTextFloat(buf *buffer, f float64) {
	switch {
	case math.IsNaN(f):
		buf.writeString("NaN")
	case math.IsInf(f, 1):
		buf.writeString("+Inf")
	case math.IsInf(f, -1):
		buf.writeString("-Inf")
	default:
		buf.b = strconv.AppendFloat(buf.b, f, 'g', -1, 64)
	}
}
