package promadapter

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xclock"

	"github.com/trickstertwo/livelog"
)

// value sums the samples of the named family whose labels include want.
func value(t *testing.T, reg *prometheus.Registry, name string, want map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var sum float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			for k, v := range want {
				if labels[k] != v {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				sum += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sum += m.GetGauge().GetValue()
			}
		}
	}
	return sum
}

type fakeEnv struct{ vars map[string]string }

func (e *fakeEnv) lookup(k string) (string, bool) {
	v, ok := e.vars[k]
	return v, ok
}

func TestObserver_CountsLinesAndRefreshes(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)
	env := &fakeEnv{vars: map[string]string{"LOG_LEVEL": "debug"}}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	l, err := livelog.New(livelog.Config{
		LookupEnv: env.lookup,
		Clock:     xclock.NewFrozen(now),
		Interval:  time.Hour,
		WriteFunc: func(string) {},
		Observers: []livelog.Observer{obs},
	})
	require.NoError(t, err)

	l.Info("one")
	l.Debug("two")
	l.Silly("dropped")

	assert.Equal(t, 1.0, value(t, reg, "livelog_lines_total", map[string]string{"level": "info", "format": "oneline"}))
	assert.Equal(t, 1.0, value(t, reg, "livelog_lines_total", map[string]string{"level": "debug"}))
	assert.Equal(t, 0.0, value(t, reg, "livelog_lines_total", map[string]string{"level": "silly"}))
	assert.Greater(t, value(t, reg, "livelog_bytes_total", nil), 0.0)
	assert.Equal(t, 1.0, value(t, reg, "livelog_config_refreshes_total", nil))
	assert.Equal(t, float64(livelog.LevelDebug.Rank()), value(t, reg, "livelog_level", nil))

	env.vars["LOG_LEVEL"] = "nonsense"
	l.Engine().LiveConfig().Reevaluate()
	assert.Equal(t, 2.0, value(t, reg, "livelog_config_refreshes_total", nil))
	assert.Equal(t, 1.0, value(t, reg, "livelog_config_errors_total", nil))
	assert.Equal(t, 0.0, value(t, reg, "livelog_config_changes_total", nil))

	env.vars["LOG_LEVEL"] = "warn"
	l.Engine().LiveConfig().Reevaluate()
	assert.Equal(t, 1.0, value(t, reg, "livelog_config_changes_total", nil))
	assert.Equal(t, float64(livelog.LevelWarn.Rank()), value(t, reg, "livelog_level", nil))
}
