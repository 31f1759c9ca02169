package livelog

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogger_LevelGate(t *testing.T) {
	t.Parallel()

	env := newFakeEnv()
	out := &recorder{}
	l, err := newTestEngine(env, newManualClock(), out, nil)
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	l.Error("e")
	l.Warn("w")
	l.Info("i")
	l.HTTP("h")
	l.Verbose("v")
	l.Debug("d")
	l.Silly("s")

	lines := out.Lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines at info, got %d: %q", len(lines), lines)
	}
	for i, want := range []string{"[error]: e", "[warn]: w", "[info]: i"} {
		if !strings.HasSuffix(lines[i], want) {
			t.Fatalf("line %d = %q, want suffix %q", i, lines[i], want)
		}
	}
}

func TestLogger_GenOnlyWhenEnabled(t *testing.T) {
	t.Parallel()

	out := &recorder{}
	l, err := newTestEngine(newFakeEnv("LOG_LEVEL", "warn"), newManualClock(), out, nil)
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	called := 0
	gen := func() []any {
		called++
		return []any{"expensive", Int("n", called)}
	}
	l.InfoGen(gen)
	l.DebugGen(gen)
	if called != 0 {
		t.Fatalf("generator ran %d times below threshold", called)
	}
	l.WarnGen(gen)
	l.ErrorGen(gen)
	if called != 2 {
		t.Fatalf("generator ran %d times, want 2", called)
	}
	if got := len(out.Lines()); got != 2 {
		t.Fatalf("expected 2 lines, got %d", got)
	}
	l.DoEfficientLog(LevelError, nil)
	if got := len(out.Lines()); got != 2 {
		t.Fatalf("nil generator must not log, got %d lines", got)
	}
}

func TestLogger_NoArgsNoLine(t *testing.T) {
	t.Parallel()

	out := &recorder{}
	l, err := newTestEngine(newFakeEnv(), newManualClock(), out, nil)
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	l.Info()
	l.DoLog(LevelError)
	if got := len(out.Lines()); got != 0 {
		t.Fatalf("expected no lines, got %d", got)
	}
}

func TestLogger_TypedNilErrorDoesNotPanic(t *testing.T) {
	t.Parallel()

	var pe *os.PathError
	for _, format := range []string{FormatOneline, FormatJSON, FormatJSONPretty, FormatLogfmt} {
		out := &recorder{}
		l, err := newTestEngine(newFakeEnv("LOG_FORMAT", format), newManualClock(), out, nil)
		if err != nil {
			t.Fatalf("build logger: %v", err)
		}
		l.Error("open failed", error(pe), map[string]any{"last": error(pe)})
		l.At(LevelError).Err(pe).Any("again", error(pe)).Msg("event")

		lines := out.Lines()
		if len(lines) != 2 {
			t.Fatalf("%s: expected 2 lines, got %q", format, lines)
		}
		if !strings.Contains(lines[0], "open failed; <nil>") {
			t.Fatalf("%s: nil error text missing: %q", format, lines[0])
		}
	}
}

func TestLogger_OnelineHasNoTrailingNewline(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := NewBuilder().
		WithLookupEnv(newFakeEnv().Lookup).
		WithWriteFunc(WriterFunc(&buf)).
		WithMetadata(Metadata{MetaService: "api"}).
		Build()
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	l.Info("one")
	l.Info("two")

	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	for _, line := range got {
		if !strings.HasPrefix(line, "api. | ") {
			t.Fatalf("unexpected line %q", line)
		}
	}
}

func TestLogger_JSONPrettySeparatedByBlankLine(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := NewBuilder().
		WithLookupEnv(newFakeEnv("LOG_FORMAT", "json_pretty").Lookup).
		WithWriteFunc(WriterFunc(&buf)).
		Build()
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	l.Info("first")
	l.Info("second")

	records := strings.Split(strings.TrimSpace(buf.String()), "\n\n")
	if len(records) != 2 {
		t.Fatalf("expected 2 records separated by one blank line, got %d: %q", len(records), buf.String())
	}
	for i, rec := range records {
		var m map[string]any
		if err := json.Unmarshal([]byte(rec), &m); err != nil {
			t.Fatalf("record %d is not JSON: %v\n%s", i, err, rec)
		}
		if strings.Contains(rec, "\n\n") {
			t.Fatalf("record %d contains a blank line", i)
		}
	}
}

func TestLogger_TagWinsOverEnvMetadata(t *testing.T) {
	t.Parallel()

	env := newFakeEnv("LOG_FORMAT", "json", "LOG_METADATA", `{"tag":"global","service":"billing"}`)
	out := &recorder{}
	l, err := newTestEngine(env, newManualClock(), out, Metadata{MetaService: "api"})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	l.Tag("db").Info("connected")
	l.Info("root")

	lines := out.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var child, root map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &child); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &root); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if child["tag"] != "db" || child["service"] != "billing" {
		t.Fatalf("child metadata mismatch: %v", child)
	}
	if root["tag"] != "global" {
		t.Fatalf("root without instance tag must use env tag: %v", root)
	}
}

func TestLogger_EnvMetadataDoesNotLeakIntoInstance(t *testing.T) {
	t.Parallel()

	env := newFakeEnv("LOG_FORMAT", "json", "LOG_METADATA", `{"ctx":{"b":2},"region":"eu"}`)
	clock := newManualClock()
	out := &recorder{}
	l, err := newTestEngine(env, clock, out, Metadata{"ctx": map[string]any{"a": 1}})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	const workers, perWorker = 8, 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				l.Info("tick")
				l.Tag("child").Info("tock")
			}
		}()
	}
	wg.Wait()
	if n := len(out.Lines()); n != 2*workers*perWorker {
		t.Fatalf("expected %d lines, got %d", 2*workers*perWorker, n)
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(out.Lines()[0]), &rec); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	ctx, _ := rec["ctx"].(map[string]any)
	if len(ctx) != 1 || ctx["b"] != float64(2) {
		t.Fatalf("env ctx must replace instance ctx, got %v", rec["ctx"])
	}

	env.Unset("LOG_METADATA")
	clock.Advance(DefaultReevaluateInterval)
	l.Info("refresh")
	md := l.Metadata()
	if _, ok := md["region"]; ok {
		t.Fatalf("env key kept after LOG_METADATA was unset: %v", md)
	}
	ctx, _ = md["ctx"].(map[string]any)
	if len(ctx) != 1 || ctx["a"] != 1 {
		t.Fatalf("instance ctx changed: %v", md["ctx"])
	}
}

func TestLogger_ChildSharesLiveConfig(t *testing.T) {
	t.Parallel()

	env := newFakeEnv()
	clock := newManualClock()
	out := &recorder{}
	l, err := newTestEngine(env, clock, out, nil)
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	child := l.Tag("worker").WithMetadata(Metadata{MetaModule: "jobs"})
	if child.Engine().LiveConfig() != l.Engine().LiveConfig() {
		t.Fatal("child must share the parent's LiveConfig")
	}

	child.Debug("hidden")
	env.Set("LOG_LEVEL", "debug")
	clock.Advance(DefaultReevaluateInterval)
	child.Debug("shown")

	lines := out.Lines()
	if len(lines) != 1 || lines[0] != "jobs.worker | 2025-01-01T00:00:00.150Z [debug]: shown" {
		t.Fatalf("unexpected lines %q", lines)
	}
	if l.Level() != LevelDebug || !l.IsDebug() {
		t.Fatal("parent must see the refreshed level")
	}
}

func TestLogger_Accessors(t *testing.T) {
	t.Parallel()

	env := newFakeEnv("LOG_LEVEL", "http", "LOG_FORMAT", "logfmt", "LOG_METADATA", `{"environment":"prod"}`)
	l, err := newTestEngine(env, newManualClock(), &recorder{}, Metadata{MetaTag: "svc"})
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	if l.Level() != LevelHTTP || l.IsDebug() {
		t.Fatalf("level mismatch: %s", l.Level())
	}
	if l.FormatName() != FormatLogfmt {
		t.Fatalf("format mismatch: %s", l.FormatName())
	}
	md := l.Metadata()
	if md[MetaTag] != "svc" || md[MetaEnvironment] != "prod" {
		t.Fatalf("metadata mismatch: %v", md)
	}
	if !l.Enabled(LevelHTTP) || l.Enabled(LevelVerbose) {
		t.Fatal("Enabled must follow the threshold")
	}
}

func TestEvent_Fluent(t *testing.T) {
	t.Parallel()

	out := &recorder{}
	l, err := newTestEngine(newFakeEnv("LOG_FORMAT", "json"), newManualClock(), out, nil)
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}

	l.At(LevelWarn).
		Str("from", "old").
		Int("count", 2).
		Bool("ok", true).
		Dur("took", time.Second).
		Err(errors.New("boom")).
		Msg("state changed")

	if ev := l.At(LevelDebug); ev != nil {
		t.Fatal("disabled level must return a nil event")
	}
	l.At(LevelDebug).Str("k", "v").Err(errors.New("x")).Msg("dropped")

	lines := out.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if m["message"] != "state changed; boom" || m["level"] != "warn" {
		t.Fatalf("message mismatch: %v", m)
	}
	if m["from"] != "old" || m["count"] != float64(2) || m["ok"] != true || m["took"] != "1s" {
		t.Fatalf("fields mismatch: %v", m)
	}
	if e, ok := m["error"].(map[string]any); !ok || e["message"] != "boom" {
		t.Fatalf("error mismatch: %v", m["error"])
	}
}

func TestObserver_ReceivesEntries(t *testing.T) {
	t.Parallel()

	clock := newManualClock()
	l, err := newTestEngine(newFakeEnv(), clock, &recorder{}, nil)
	if err != nil {
		t.Fatalf("build logger: %v", err)
	}
	var got []Entry
	l.AddObserver(ObserverFunc(func(e Entry) { got = append(got, e) }))

	child := l.Tag("c")
	child.Info("done", Str("path", "/api"))
	l.Debug("filtered")

	if len(got) != 1 {
		t.Fatalf("expected 1 observer entry, got %d", len(got))
	}
	e := got[0]
	if !e.At.Equal(clock.Now()) || e.Level != LevelInfo || e.Format != FormatOneline {
		t.Fatalf("observer basic fields mismatch: %+v", e)
	}
	if e.Line != "c | 2025-01-01T00:00:00.000Z [info]: done" {
		t.Fatalf("observer line mismatch: %q", e.Line)
	}
	if f, ok := e.Message.Get("path"); !ok || f.Str != "/api" {
		t.Fatalf("observer message missing path: %+v", e.Message.Fields())
	}
}
