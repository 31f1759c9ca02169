package livelog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// StderrWriteFunc writes line and a newline to os.Stderr.
func StderrWriteFunc(line string) { fmt.Fprintln(os.Stderr, line) }

// WriterFunc returns a WriteFunc that writes each line and a newline to w.
// Writes are serialized; write errors are dropped.
func WriterFunc(w io.Writer) WriteFunc {
	var mu sync.Mutex
	return func(line string) {
		mu.Lock()
		defer mu.Unlock()
		_, _ = io.WriteString(w, line+"\n")
	}
}

// Default builds a logger with no level envs, writing to stderr.
func Default() *Logger {
	l, err := NewBuilder().Build()
	if err != nil {
		// Only a registry without the oneline format can fail here.
		panic(err)
	}
	return l
}

// Holder owns the single application logger. The application creates one
// Holder at startup and hands it to its components; the library keeps no
// global logger of its own.
type Holder struct {
	once  sync.Once
	build func() (*Logger, error)
	l     *Logger
	err   error
}

// NewHolder defers b.Build until the first Logger call.
func NewHolder(b *Builder) *Holder {
	return &Holder{build: b.Build}
}

// Logger builds the logger on first use and returns the same instance after.
func (h *Holder) Logger() (*Logger, error) {
	h.once.Do(func() {
		h.l, h.err = h.build()
	})
	return h.l, h.err
}

// MustLogger is Logger for callers that treat a bad configuration as fatal.
func (h *Holder) MustLogger() *Logger {
	l, err := h.Logger()
	if err != nil {
		panic(err)
	}
	return l
}
