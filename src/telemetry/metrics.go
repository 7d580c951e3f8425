// Package telemetry exposes the dashboard's operational counters as
// Prometheus metrics, served on /metrics by the web UI.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the poll-loop instruments. A nil *Metrics is valid and
// records nothing, so components never need to guard their calls.
type Metrics struct {
	Registry *prometheus.Registry

	pollTicks     prometheus.Counter
	fetchErrors   *prometheus.CounterVec
	readings      prometheus.Counter
	lastSuccessTS prometheus.Gauge
}

// New builds a metrics set on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		pollTicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "greendash_poll_ticks_total",
			Help: "Poll cycles started, including the immediate first one.",
		}),
		fetchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greendash_fetch_errors_total",
			Help: "Failed endpoint fetches by failure category.",
		}, []string{"kind"}),
		readings: factory.NewCounter(prometheus.CounterOpts{
			Name: "greendash_readings_fetched_total",
			Help: "Sensor readings successfully decoded from the endpoint.",
		}),
		lastSuccessTS: factory.NewGauge(prometheus.GaugeOpts{
			Name: "greendash_last_success_timestamp_seconds",
			Help: "Unix time of the last successful fetch of any kind.",
		}),
	}
}

// PollTick counts one poll cycle.
func (m *Metrics) PollTick() {
	if m == nil {
		return
	}
	m.pollTicks.Inc()
}

// FetchError counts one classified fetch failure.
func (m *Metrics) FetchError(kind string) {
	if m == nil {
		return
	}
	m.fetchErrors.WithLabelValues(kind).Inc()
}

// ReadingsFetched counts decoded readings and stamps the success gauge.
func (m *Metrics) ReadingsFetched(n int, unixSeconds float64) {
	if m == nil {
		return
	}
	m.readings.Add(float64(n))
	m.lastSuccessTS.Set(unixSeconds)
}
