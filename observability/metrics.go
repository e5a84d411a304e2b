package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for registrations and the record store.
type Metrics struct {
	// Registration outcomes by status (created, eligible, ineligible)
	Outcomes *prometheus.CounterVec

	// Failed registrations by error kind (validation, store)
	Errors *prometheus.CounterVec

	// Record store round trips by operation (swap, find, upsert)
	StoreLatency *prometheus.HistogramVec

	ProcessRSS prometheus.Gauge
	ProcessCPU prometheus.Gauge
}

// NewMetrics registers every metric on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "touroku_registration_outcomes_total",
			Help: "Total registrations by resulting status",
		}, []string{"status"}),

		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "touroku_registration_errors_total",
			Help: "Total failed registrations by error kind",
		}, []string{"kind"}),

		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "touroku_store_duration_seconds",
			Help:    "Duration of record store operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"op"}),

		ProcessRSS: factory.NewGauge(prometheus.GaugeOpts{
			Name: "touroku_process_rss_bytes",
			Help: "Resident memory of the bot process",
		}),

		ProcessCPU: factory.NewGauge(prometheus.GaugeOpts{
			Name: "touroku_process_cpu_percent",
			Help: "CPU usage of the bot process",
		}),
	}
}

func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncrementError(kind string) {
	if m != nil {
		m.Errors.WithLabelValues(kind).Inc()
	}
}

// ObserveStore records the duration of a store operation started at start.
func (m *Metrics) ObserveStore(op string, start time.Time) {
	if m != nil {
		m.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) SetProcessStats(stats ProcessStats) {
	if m != nil {
		m.ProcessRSS.Set(float64(stats.RSSBytes))
		m.ProcessCPU.Set(stats.CPUPercent)
	}
}
