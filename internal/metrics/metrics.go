package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "emotionquest"

// Metrics holds Prometheus metrics for the API server. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter     *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInFlight   prometheus.Gauge
	CheckIns           *prometheus.CounterVec
	GamesCompleted     prometheus.Counter
	QuestionsGenerated prometheus.Counter
	Recognitions       *prometheus.CounterVec
	RateLimited        prometheus.Counter
}

// NewMetrics creates a new metrics instance on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Number of requests currently being processed",
			},
		),
		CheckIns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "check_ins_total",
				Help:      "Check-in attempts by outcome",
			},
			[]string{"status"},
		),
		GamesCompleted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "games_completed_total",
				Help:      "Mini-games reported as finished",
			},
		),
		QuestionsGenerated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quiz_questions_generated_total",
				Help:      "Quiz questions generated",
			},
		),
		Recognitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recognitions_total",
				Help:      "Recognition results by label",
			},
			[]string{"label"},
		),
		RateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the upload rate limiter",
			},
		),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RequestStarted tracks a request entering the server
func (m *Metrics) RequestStarted() {
	if m == nil {
		return
	}
	m.RequestsInFlight.Inc()
}

// RequestFinished records a request leaving the server
func (m *Metrics) RequestFinished(route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestsInFlight.Dec()
	m.RequestCounter.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) CheckIn(status string) {
	if m == nil {
		return
	}
	m.CheckIns.WithLabelValues(status).Inc()
}

func (m *Metrics) GameCompleted() {
	if m == nil {
		return
	}
	m.GamesCompleted.Inc()
}

func (m *Metrics) QuestionsServed(n int) {
	if m == nil {
		return
	}
	m.QuestionsGenerated.Add(float64(n))
}

func (m *Metrics) Recognized(label string) {
	if m == nil {
		return
	}
	m.Recognitions.WithLabelValues(label).Inc()
}

func (m *Metrics) Limited() {
	if m == nil {
		return
	}
	m.RateLimited.Inc()
}
