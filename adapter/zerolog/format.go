package zerologadapter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	"github.com/trickstertwo/livelog"
)

// FormatConsole is the format name registered by this package.
const FormatConsole = "zerolog_console"

// ConsoleFormatter renders the JSON record through zerolog.ConsoleWriter:
// time, level and message first, then the remaining fields as key=value.
type ConsoleFormatter struct {
	json livelog.Formatter
	cw   zerolog.ConsoleWriter
}

// NewConsole builds the formatter. Out of cw is replaced per record;
// zero parts and exclusions are filled with the livelog record layout.
func NewConsole(cw zerolog.ConsoleWriter) *ConsoleFormatter {
	if len(cw.PartsOrder) == 0 {
		cw.PartsOrder = []string{livelog.KeyTimeISO, livelog.KeyLevel, livelog.KeyMessage}
	}
	if len(cw.FieldsExclude) == 0 {
		cw.FieldsExclude = []string{livelog.KeyTimeISO, livelog.KeyTimestamp, livelog.KeyLevelValue}
	}
	if cw.FormatLevel == nil {
		cw.FormatLevel = formatLevel
	}
	return &ConsoleFormatter{json: livelog.NewJSONFormatter(false), cw: cw}
}

func (f *ConsoleFormatter) Name() string { return FormatConsole }

func (f *ConsoleFormatter) Format(msg *livelog.Message, md livelog.Metadata) string {
	var out bytes.Buffer
	cw := f.cw
	cw.Out = &out
	if _, err := cw.Write([]byte(f.json.Format(msg, md))); err != nil {
		return "livelog: zerolog console: " + err.Error()
	}
	return strings.TrimRight(out.String(), "\n")
}

// formatLevel pads the npm level name so messages line up.
func formatLevel(i any) string {
	return fmt.Sprintf("%-7s", strings.ToUpper(cast.ToString(i)))
}
