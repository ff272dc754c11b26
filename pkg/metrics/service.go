// Package metrics exposes Prometheus collectors for dataset generation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	samplesGenerated prometheus.Counter
	buildDuration    prometheus.Histogram
	httpRequests     *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, so several instances
// can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bems",
			Name:      "dataset_cache_hits_total",
			Help:      "Dataset requests served from the cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bems",
			Name:      "dataset_cache_misses_total",
			Help:      "Dataset requests that required a build.",
		}),
		samplesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bems",
			Name:      "samples_generated_total",
			Help:      "Telemetry samples produced by the generator.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bems",
			Name:      "dataset_build_seconds",
			Help:      "Time to generate and roll up a dataset.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bems",
			Name:      "http_requests_total",
			Help:      "API requests by route and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(
		m.cacheHits,
		m.cacheMisses,
		m.samplesGenerated,
		m.buildDuration,
		m.httpRequests,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) CacheHit()  { m.cacheHits.Inc() }
func (m *Metrics) CacheMiss() { m.cacheMisses.Inc() }

func (m *Metrics) Built(samples int, took time.Duration) {
	m.samplesGenerated.Add(float64(samples))
	m.buildDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveRequest(route string, code string) {
	m.httpRequests.WithLabelValues(route, code).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
