package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchesTotal     *prometheus.CounterVec
	searchResults     *prometheus.HistogramVec
	wizardStepsTotal  *prometheus.CounterVec
	submissionsTotal  *prometheus.CounterVec
	paymentsTotal     *prometheus.CounterVec
	reportDownloads   *prometheus.CounterVec
	transactionsTotal *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terravilla",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "terravilla",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "terravilla",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terravilla",
			Subsystem: "catalog",
			Name:      "searches_total",
			Help:      "Total catalog searches by whether any filter was applied.",
		},
		[]string{"service", "filtered"},
	)
	searchResults := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "terravilla",
			Subsystem: "catalog",
			Name:      "search_results",
			Help:      "Distribution of result counts per search.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21, 34},
		},
		[]string{"service"},
	)
	wizardStepsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terravilla",
			Subsystem: "wizard",
			Name:      "steps_total",
			Help:      "Total listing wizard step submissions by step and outcome.",
		},
		[]string{"service", "step", "outcome"},
	)
	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terravilla",
			Subsystem: "wizard",
			Name:      "submissions_total",
			Help:      "Total completed listing submissions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	paymentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terravilla",
			Subsystem: "payments",
			Name:      "payments_total",
			Help:      "Total listing-fee payment attempts by final status.",
		},
		[]string{"service", "status"},
	)
	reportDownloads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terravilla",
			Subsystem: "market",
			Name:      "report_downloads_total",
			Help:      "Total market report downloads.",
		},
		[]string{"service"},
	)
	transactionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "terravilla",
			Subsystem: "transactions",
			Name:      "transitions_total",
			Help:      "Total transaction state transitions by target status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchesTotal,
		searchResults,
		wizardStepsTotal,
		submissionsTotal,
		paymentsTotal,
		reportDownloads,
		transactionsTotal,
	)

	return &HTTPServerMetrics{
		registry:          registry,
		requestTotal:      requestTotal,
		requestDuration:   requestDuration,
		requestInFlight:   requestInFlight,
		searchesTotal:     searchesTotal,
		searchResults:     searchResults,
		wizardStepsTotal:  wizardStepsTotal,
		submissionsTotal:  submissionsTotal,
		paymentsTotal:     paymentsTotal,
		reportDownloads:   reportDownloads,
		transactionsTotal: transactionsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses ID segments so the path label stays low-cardinality.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/plots/"):
		return "/v1/plots/{plot_id}"
	case strings.HasPrefix(path, "/v1/payments/"):
		return "/v1/payments/{plot_id}"
	case strings.HasPrefix(path, "/v1/transactions/"):
		return "/v1/transactions/{transaction_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSearch(service string, filtered bool, resultCount int) {
	m.searchesTotal.WithLabelValues(service, strconv.FormatBool(filtered)).Inc()
	m.searchResults.WithLabelValues(service).Observe(float64(resultCount))
}

func (m *HTTPServerMetrics) RecordWizardStep(service, step string, err error) {
	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
	}
	m.wizardStepsTotal.WithLabelValues(service, step, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordSubmission(service string, err error) {
	outcome := "accepted"
	if err != nil {
		outcome = "rejected"
	}
	m.submissionsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordPayment(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.paymentsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordReportDownload(service string) {
	m.reportDownloads.WithLabelValues(service).Inc()
}

func (m *HTTPServerMetrics) RecordTransactionTransition(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.transactionsTotal.WithLabelValues(service, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
