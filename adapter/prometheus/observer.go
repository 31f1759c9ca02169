// Package promadapter exports livelog activity as Prometheus metrics.
package promadapter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/trickstertwo/livelog"
)

const namespace = "livelog"

// Observer counts written records and configuration refreshes. Register
// it with Builder.AddObserver so refreshes are seen from the first one.
type Observer struct {
	lines         *prometheus.CounterVec
	bytes         *prometheus.CounterVec
	refreshes     prometheus.Counter
	refreshErrors prometheus.Counter
	changes       prometheus.Counter
	level         prometheus.Gauge
}

// New registers the collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Observer {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Observer{
		lines: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lines_total",
				Help:      "Total number of records written",
			},
			[]string{"level", "format"},
		),
		bytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "bytes_total",
				Help:      "Total size of records written in bytes",
			},
			[]string{"level"},
		),
		refreshes: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_refreshes_total",
				Help:      "Total number of live configuration evaluations",
			},
		),
		refreshErrors: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_errors_total",
				Help:      "Total number of faults found while evaluating the live configuration",
			},
		),
		changes: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "config_changes_total",
				Help:      "Total number of evaluations that changed the level or format",
			},
		),
		level: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "level",
				Help:      "Current level threshold as its npm rank (0 error .. 6 silly)",
			},
		),
	}
}

func (o *Observer) OnLog(e livelog.Entry) {
	lv := e.Level.String()
	o.lines.WithLabelValues(lv, e.Format).Inc()
	o.bytes.WithLabelValues(lv).Add(float64(len(e.Line)))
}

func (o *Observer) OnConfig(c livelog.ConfigChange) {
	o.refreshes.Inc()
	if n := len(c.Errs); n > 0 {
		o.refreshErrors.Add(float64(n))
	}
	if c.Old != nil && c.Changed() {
		o.changes.Inc()
	}
	if c.New != nil {
		o.level.Set(float64(c.New.Level.Rank()))
	}
}
