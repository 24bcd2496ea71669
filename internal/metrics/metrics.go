// Package metrics exports collector activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mandrykarina/GC/internal/gc"
)

const namespace = "gcsim"

// Metrics holds the simulator metric vectors. All vectors are labelled by
// collector name.
type Metrics struct {
	registry *prometheus.Registry

	operations     *prometheus.CounterVec
	allocatedBytes *prometheus.CounterVec
	freedBytes     *prometheus.CounterVec
	freedObjects   *prometheus.CounterVec
	collections    *prometheus.CounterVec
	liveBytes      *prometheus.GaugeVec
	aliveObjects   *prometheus.GaugeVec
	failures       *prometheus.CounterVec
	runs           *prometheus.CounterVec
	replaySeconds  *prometheus.HistogramVec
}

// New creates the metrics on a fresh registry that also carries the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg)
}

// NewWithRegistry creates the metrics on reg.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Collector events by kind.",
		}, []string{"collector", "kind"}),
		allocatedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocated_bytes_total",
			Help:      "Bytes allocated on the simulated heap.",
		}, []string{"collector"}),
		freedBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freed_bytes_total",
			Help:      "Bytes reclaimed by the collector.",
		}, []string{"collector"}),
		freedObjects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "freed_objects_total",
			Help:      "Objects reclaimed by the collector.",
		}, []string{"collector"}),
		collections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collections_total",
			Help:      "Completed collect calls.",
		}, []string{"collector"}),
		liveBytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_bytes",
			Help:      "Live bytes after the most recent event.",
		}, []string{"collector"}),
		aliveObjects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alive_objects",
			Help:      "Live objects after the most recent event.",
		}, []string{"collector"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Scenario operations rejected by the collector, by error code.",
		}, []string{"collector", "code"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Scenario replays.",
		}, []string{"collector"}),
		replaySeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "replay_duration_seconds",
			Help:      "Wall time of scenario replays.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"collector"}),
	}
	reg.MustRegister(
		m.operations, m.allocatedBytes, m.freedBytes, m.freedObjects, m.collections,
		m.liveBytes, m.aliveObjects, m.failures, m.runs, m.replaySeconds,
	)
	return m
}

// Registry returns the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OnEvent records ev. Metrics implements gc.EventSink.
func (m *Metrics) OnEvent(ev gc.Event) {
	m.operations.WithLabelValues(ev.Collector, string(ev.Kind)).Inc()
	switch ev.Kind {
	case gc.EventAllocate:
		m.allocatedBytes.WithLabelValues(ev.Collector).Add(float64(ev.Size))
	case gc.EventFree:
		m.freedBytes.WithLabelValues(ev.Collector).Add(float64(ev.FreedBytes))
		m.freedObjects.WithLabelValues(ev.Collector).Add(float64(ev.FreedObjects))
	case gc.EventCollectEnd:
		m.collections.WithLabelValues(ev.Collector).Inc()
	}
	m.liveBytes.WithLabelValues(ev.Collector).Set(float64(ev.LiveBytes))
	m.aliveObjects.WithLabelValues(ev.Collector).Set(float64(ev.AliveCount))
}

// ObserveRun records a finished replay.
func (m *Metrics) ObserveRun(collector string, seconds float64, failureCodes []string) {
	m.runs.WithLabelValues(collector).Inc()
	m.replaySeconds.WithLabelValues(collector).Observe(seconds)
	for _, code := range failureCodes {
		m.failures.WithLabelValues(collector, code).Inc()
	}
}
