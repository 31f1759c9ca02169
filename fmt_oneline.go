package livelog

import "strings"

// OnelineOptions tunes the oneline formatter.
type OnelineOptions struct {
	// IncludeStack appends the first error's stack on the lines after the
	// record. Off by default so a record stays on one line.
	IncludeStack bool
}

// OnelineFormatter renders "<identifier> | <time> [<level>]: <message>".
type OnelineFormatter struct {
	opts OnelineOptions
}

func NewOnelineFormatter(opts OnelineOptions) *OnelineFormatter {
	return &OnelineFormatter{opts: opts}
}

func (f *OnelineFormatter) Name() string { return FormatOneline }

func (f *OnelineFormatter) Format(msg *Message, md Metadata) string {
	var b strings.Builder
	b.WriteString(md.Identifier())
	b.WriteString(" | ")
	b.WriteString(msg.TimeISO())
	b.WriteString(" [")
	b.WriteString(msg.LevelName())
	b.WriteString("]: ")
	b.WriteString(msg.Text())
	if f.opts.IncludeStack {
		if e := msg.Err(); e != nil && e.Stack != "" {
			b.WriteByte('\n')
			b.WriteString(e.Stack)
		}
	}
	return b.String()
}
