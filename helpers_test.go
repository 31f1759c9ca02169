package livelog

import (
	"sync"
	"time"
)

// fakeEnv is a concurrency-safe environment for LookupEnv injection.
type fakeEnv struct {
	mu   sync.Mutex
	vars map[string]string
}

func newFakeEnv(kv ...string) *fakeEnv {
	e := &fakeEnv{vars: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		e.vars[kv[i]] = kv[i+1]
	}
	return e
}

func (e *fakeEnv) Lookup(k string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[k]
	return v, ok
}

func (e *fakeEnv) Set(k, v string) {
	e.mu.Lock()
	e.vars[k] = v
	e.mu.Unlock()
}

func (e *fakeEnv) Unset(k string) {
	e.mu.Lock()
	delete(e.vars, k)
	e.mu.Unlock()
}

// manualClock is advanced explicitly by tests.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock() *manualClock {
	return &manualClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// recorder captures written lines.
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Write(line string) {
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}

func (r *recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *recorder) Reset() {
	r.mu.Lock()
	r.lines = nil
	r.mu.Unlock()
}

// newTestLiveConfig builds a LiveConfig over env and clock; diagnostics go to diag.
func newTestLiveConfig(env *fakeEnv, clock *manualClock, diag *recorder, levelEnvs ...string) (*LiveConfig, error) {
	return NewLiveConfig(LiveConfigOptions{
		LevelEnvs: levelEnvs,
		Fallback:  diag.Write,
		LookupEnv: env.Lookup,
		Now:       clock.Now,
	})
}

// newTestEngine wires an Engine the way New does, with an injectable clock
// function that xclock.Clock values cannot provide.
func newTestEngine(env *fakeEnv, clock *manualClock, out *recorder, md Metadata, levelEnvs ...string) (*Logger, error) {
	live, err := newTestLiveConfig(env, clock, out, levelEnvs...)
	if err != nil {
		return nil, err
	}
	return newLogger(newEngine(live, md, out.Write, clock.Now, nil)), nil
}
