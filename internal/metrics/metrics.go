// Package metrics exports unit-of-work activity as prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vbonduro/txdao/internal/unitofwork"
)

const namespace = "txdao"

// Collector implements unitofwork.Observer.
type Collector struct {
	open     prometheus.Gauge
	finished *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ unitofwork.Observer = (*Collector)(nil)

// NewCollector registers the unit-of-work metrics with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_open",
			Help:      "Sessions currently held by in-flight units of work.",
		}),
		finished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_of_work_total",
			Help:      "Units of work by operation and outcome.",
		}, []string{"op", "read_only", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_of_work_duration_seconds",
			Help:      "Time from session acquisition to release.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"op"}),
	}

	for _, col := range []prometheus.Collector{c.open, c.finished, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) SessionOpened() {
	c.open.Inc()
}

func (c *Collector) SessionReleased() {
	c.open.Dec()
}

func (c *Collector) Finished(op string, readOnly bool, outcome unitofwork.Outcome, elapsed time.Duration) {
	c.finished.WithLabelValues(op, strconv.FormatBool(readOnly), string(outcome)).Inc()
	c.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}
