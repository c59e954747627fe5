package metrics

import "github.com/prometheus/client_golang/prometheus"

const cacheSubsystem = "cache"

type cacheMetrics struct {
	hits      *prometheus.CounterVec
	misses    *prometheus.CounterVec
	evictions *prometheus.CounterVec

	entries *prometheus.GaugeVec
}

func newCacheMetrics() cacheMetrics {
	return cacheMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: cacheSubsystem,
			Name:      "hits_total",
			Help:      "Number of asset requests served by alive cache entries",
		}, []string{kindLabelKey}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: cacheSubsystem,
			Name:      "misses_total",
			Help:      "Number of asset requests that invoked the decoder",
		}, []string{kindLabelKey}),
		evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: cacheSubsystem,
			Name:      "evictions_total",
			Help:      "Number of cache entries removed after the last handle release",
		}, []string{kindLabelKey}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: cacheSubsystem,
			Name:      "entries",
			Help:      "Number of alive cache entries",
		}, []string{kindLabelKey}),
	}
}

func (m cacheMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.hits)
	reg.MustRegister(m.misses)
	reg.MustRegister(m.evictions)
	reg.MustRegister(m.entries)
}

func (m cacheMetrics) AddCacheHit(kind string) {
	m.hits.With(prometheus.Labels{kindLabelKey: kind}).Inc()
}

func (m cacheMetrics) AddCacheMiss(kind string) {
	m.misses.With(prometheus.Labels{kindLabelKey: kind}).Inc()
}

func (m cacheMetrics) AddCacheEviction(kind string) {
	m.evictions.With(prometheus.Labels{kindLabelKey: kind}).Inc()
}

func (m cacheMetrics) AddCacheEntries(kind string, delta int) {
	m.entries.With(prometheus.Labels{kindLabelKey: kind}).Add(float64(delta))
}
