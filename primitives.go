package livelog

import (
	"encoding/base64"
	"math"
	"strconv"
	"time"
)

const digits = "0123456789abcdef"

var (
	jsonTrue  = []byte("true")
	jsonFalse = []byte("false")
	jsonNull  = []byte("null")
)

func appendInt64(buf *buffer, v int64)   { buf.b = strconv.AppendInt(buf.b, v, 10) }
func appendUint64(buf *buffer, v uint64) { buf.b = strconv.AppendUint(buf.b, v, 10) }

// appendJSONFloat writes NaN and infinities as null.
func appendJSONFloat(buf *buffer, f float64, bitSize int) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		buf.writeBytes(jsonNull)
		return
	}
	buf.b = strconv.AppendFloat(buf.b, f, 'g', -1, bitSize)
}

func appendRFC3339Nano(buf *buffer, t time.Time) {
	buf.b = t.AppendFormat(buf.b, time.RFC3339Nano)
}

func appendBase64(buf *buffer, data []byte) {
	buf.writeByte('"')
	buf.b = base64.StdEncoding.AppendEncode(buf.b, data)
	buf.writeByte('"')
}
