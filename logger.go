package livelog

// Logger is the public logging surface. Each level has a direct method
// taking the message parts and a *Gen method whose generator runs only when
// the level is enabled.
type Logger struct {
	e *Engine
}

func newLogger(e *Engine) *Logger { return &Logger{e: e} }

// Engine returns the engine behind l.
func (l *Logger) Engine() *Engine { return l.e }

func (l *Logger) Level() Level             { return l.e.Level() }
func (l *Logger) FormatName() string       { return l.e.FormatName() }
func (l *Logger) Metadata() Metadata       { return l.e.Metadata() }
func (l *Logger) IsDebug() bool            { return l.e.IsDebug() }
func (l *Logger) Enabled(level Level) bool { return l.e.Enabled(level) }

// Tag returns a child logger with its own tag and the same live config.
func (l *Logger) Tag(name string) *Logger { return newLogger(l.e.Tag(name)) }

// WithMetadata returns a child logger with md added to its instance metadata.
func (l *Logger) WithMetadata(md Metadata) *Logger { return newLogger(l.e.WithMetadata(md)) }

func (l *Logger) AddObserver(o Observer) { l.e.AddObserver(o) }

func (l *Logger) DoLog(level Level, args ...any) { l.e.Log(level, args...) }

func (l *Logger) DoEfficientLog(level Level, gen func() []any) { l.e.LogGen(level, gen) }

func (l *Logger) Error(args ...any)   { l.e.Log(LevelError, args...) }
func (l *Logger) Warn(args ...any)    { l.e.Log(LevelWarn, args...) }
func (l *Logger) Info(args ...any)    { l.e.Log(LevelInfo, args...) }
func (l *Logger) HTTP(args ...any)    { l.e.Log(LevelHTTP, args...) }
func (l *Logger) Verbose(args ...any) { l.e.Log(LevelVerbose, args...) }
func (l *Logger) Debug(args ...any)   { l.e.Log(LevelDebug, args...) }
func (l *Logger) Silly(args ...any)   { l.e.Log(LevelSilly, args...) }

func (l *Logger) ErrorGen(gen func() []any)   { l.e.LogGen(LevelError, gen) }
func (l *Logger) WarnGen(gen func() []any)    { l.e.LogGen(LevelWarn, gen) }
func (l *Logger) InfoGen(gen func() []any)    { l.e.LogGen(LevelInfo, gen) }
func (l *Logger) HTTPGen(gen func() []any)    { l.e.LogGen(LevelHTTP, gen) }
func (l *Logger) VerboseGen(gen func() []any) { l.e.LogGen(LevelVerbose, gen) }
func (l *Logger) DebugGen(gen func() []any)   { l.e.LogGen(LevelDebug, gen) }
func (l *Logger) SillyGen(gen func() []any)   { l.e.LogGen(LevelSilly, gen) }
