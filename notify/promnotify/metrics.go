// Package promnotify exports encstore change events as Prometheus metrics.
package promnotify

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/encstore"
)

// Metrics counts events by type, read hits and misses, and batch sizes.
type Metrics struct {
	events    *prometheus.CounterVec   // events by type
	reads     *prometheus.CounterVec   // single reads by result (hit/miss)
	batchKeys *prometheus.HistogramVec // keys per batch by type
	length    prometheus.Gauge         // last reported store length
}

// New creates the metrics and registers them with reg. namespace defaults
// to "encstore".
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if namespace == "" {
		namespace = "encstore"
	}
	m := &Metrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total change events by type",
		}, []string{"type"}),

		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reads_total",
			Help:      "Single-key reads by result",
		}, []string{"result"}),

		batchKeys: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_keys",
			Help:      "Keys per batch operation",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"type"}),

		length: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "length",
			Help:      "Item count last reported by a length call",
		}),
	}

	for _, c := range []prometheus.Collector{m.events, m.reads, m.batchKeys, m.length} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handle is an encstore.NotifyHandler.
func (m *Metrics) Handle(ev encstore.ChangeEvent) {
	m.events.WithLabelValues(string(ev.Type)).Inc()

	switch ev.Type {
	case encstore.ChangeGet:
		if ev.Value == nil {
			m.reads.WithLabelValues("miss").Inc()
		} else {
			m.reads.WithLabelValues("hit").Inc()
		}
	case encstore.ChangeSetMultiple, encstore.ChangeGetMultiple, encstore.ChangeRemoveMultiple:
		m.batchKeys.WithLabelValues(string(ev.Type)).Observe(float64(len(ev.Keys)))
	case encstore.ChangeLength:
		if n, ok := ev.Value.(int); ok {
			m.length.Set(float64(n))
		}
	}
}
