package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	databaseSubsystem = "database"

	resultLabelKey = "result"
)

type databaseMetrics struct {
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	databases    prometheus.Gauge
}

func newDatabaseMetrics() databaseMetrics {
	return databaseMetrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: databaseSubsystem,
			Name:      "loads_total",
			Help:      "Number of top-level database loads by result",
		}, []string{resultLabelKey}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: databaseSubsystem,
			Name:      "load_time",
			Help:      "Top-level database load time including dependencies",
		}),
		databases: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: databaseSubsystem,
			Name:      "registered",
			Help:      "Number of databases in the manager registry",
		}),
	}
}

func (m databaseMetrics) register(reg prometheus.Registerer) {
	reg.MustRegister(m.loads)
	reg.MustRegister(m.loadDuration)
	reg.MustRegister(m.databases)
}

func (m databaseMetrics) AddDatabaseLoad(success bool) {
	res := "success"
	if !success {
		res = "failure"
	}

	m.loads.With(prometheus.Labels{resultLabelKey: res}).Inc()
}

func (m databaseMetrics) AddDatabaseLoadDuration(d time.Duration) {
	m.loadDuration.Observe(d.Seconds())
}

func (m databaseMetrics) SetDatabases(n int) {
	m.databases.Set(float64(n))
}
