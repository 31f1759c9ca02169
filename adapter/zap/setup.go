package zapadapter

import (
	"go.uber.org/zap/zapcore"

	"github.com/trickstertwo/livelog"
)

// Blank-importing this package makes zap_json and zap_console selectable
// through LOG_FORMAT.
func init() {
	if err := Register(livelog.DefaultFormats()); err != nil {
		panic(err)
	}
}

// Register adds the zap formats to r.
func Register(r *livelog.Registry) error {
	if err := r.Register(NewJSON()); err != nil {
		return err
	}
	return r.Register(NewConsole())
}

// WriteSyncer returns a WriteFunc writing each line to ws, e.g.
// zapcore.Lock(os.Stdout). Write errors are dropped.
func WriteSyncer(ws zapcore.WriteSyncer) livelog.WriteFunc {
	return func(line string) {
		_, _ = ws.Write([]byte(line + "\n"))
	}
}
