package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	verifyTotal    *prometheus.CounterVec
	verifyDuration *prometheus.HistogramVec
	verifyInFlight prometheus.Gauge
	queueLag       *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	verifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terravilla",
			Subsystem: "worker",
			Name:      "listing_verify_total",
			Help:      "Total verified listings by status.",
		},
		[]string{"service", "status"},
	)
	verifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "terravilla",
			Subsystem: "worker",
			Name:      "listing_verify_duration_seconds",
			Help:      "Listing verification duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	verifyInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "terravilla",
			Subsystem: "worker",
			Name:      "listing_verify_in_flight",
			Help:      "Number of in-flight listing verifications.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "terravilla",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between listing submission and verification start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(verifyTotal, verifyDuration, verifyInFlight, queueLag)

	return &WorkerMetrics{
		registry:       registry,
		verifyTotal:    verifyTotal,
		verifyDuration: verifyDuration,
		verifyInFlight: verifyInFlight,
		queueLag:       queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartVerification() {
	m.verifyInFlight.Inc()
}

func (m *WorkerMetrics) FinishVerification(service string, duration time.Duration, err error) {
	m.verifyInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.verifyTotal.WithLabelValues(service, status).Inc()
	m.verifyDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
