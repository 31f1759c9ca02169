package zapadapter

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/livelog"
)

// Format names registered by this package.
const (
	FormatJSON    = "zap_json"
	FormatConsole = "zap_console"
)

// Formatter renders livelog records through a zapcore.Encoder.
//
// time_iso, level and message are rendered by the encoder from the entry;
// every other record and metadata field is passed as a zap.Field.
type Formatter struct {
	name string
	enc  zapcore.Encoder
}

// EncoderConfig is the config used by NewJSON and NewConsole.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        livelog.KeyTimeISO,
		LevelKey:       livelog.KeyLevel,
		MessageKey:     livelog.KeyMessage,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    EncodeLevel,
		EncodeTime:     EncodeTime,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func NewJSON() *Formatter {
	return New(FormatJSON, zapcore.NewJSONEncoder(EncoderConfig()))
}

func NewConsole() *Formatter {
	return New(FormatConsole, zapcore.NewConsoleEncoder(EncoderConfig()))
}

// New wraps enc as a livelog format called name.
func New(name string, enc zapcore.Encoder) *Formatter {
	return &Formatter{name: name, enc: enc}
}

func (f *Formatter) Name() string { return f.name }

func (f *Formatter) Format(msg *livelog.Message, md livelog.Metadata) string {
	entry := zapcore.Entry{
		Level:   toZapLevel(msg.Level()),
		Time:    msg.Time(),
		Message: msg.Text(),
	}
	fields := livelog.OutputFields(md, msg)
	zfs := make([]zap.Field, 0, len(fields))
	for i := range fields {
		switch fields[i].K {
		case livelog.KeyTimeISO, livelog.KeyLevel, livelog.KeyMessage:
			continue
		}
		zfs = append(zfs, toZapField(&fields[i]))
	}
	buf, err := f.enc.EncodeEntry(entry, zfs)
	if err != nil {
		return "livelog: zap encode: " + err.Error()
	}
	defer buf.Free()
	return strings.TrimSuffix(buf.String(), zapcore.DefaultLineEnding)
}

// toZapLevel keeps severity order: error..info map onto zap's error..info,
// the more verbose npm levels onto zap's debug and below.
func toZapLevel(l livelog.Level) zapcore.Level {
	return zapcore.InfoLevel - zapcore.Level(l.Rank()-livelog.LevelInfo.Rank())
}

func fromZapLevel(l zapcore.Level) livelog.Level {
	return livelog.Level(int(zapcore.InfoLevel-l) + livelog.LevelInfo.Rank())
}

// EncodeLevel writes the npm level name for levels produced by toZapLevel.
func EncodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fromZapLevel(l).String())
}

// EncodeTime writes the UTC millisecond form used by time_iso.
func EncodeTime(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

func toZapField(f *livelog.Field) zap.Field {
	switch f.Kind {
	case livelog.KindString:
		return zap.String(f.K, f.Str)
	case livelog.KindInt64:
		return zap.Int64(f.K, f.Int64)
	case livelog.KindUint64:
		return zap.Uint64(f.K, f.Uint64)
	case livelog.KindFloat64:
		return zap.Float64(f.K, f.Float64)
	case livelog.KindBool:
		return zap.Bool(f.K, f.Bool)
	case livelog.KindDuration:
		return zap.Duration(f.K, f.Dur)
	case livelog.KindTime:
		return zap.Time(f.K, f.Time)
	case livelog.KindError:
		if f.Err == nil {
			return zap.Skip()
		}
		return zap.NamedError(f.K, f.Err)
	case livelog.KindBytes:
		return zap.ByteString(f.K, f.Bytes)
	case livelog.KindAny:
		return zap.Any(f.K, f.Any)
	default:
		return zap.Skip()
	}
}
