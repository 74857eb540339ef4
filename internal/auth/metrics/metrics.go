// Package metrics holds the Prometheus collectors for the auth service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess           = "success"
	ResultTwoFactorRequired = "2fa_required"
	ResultRejected          = "rejected"
	ResultError             = "error"
)

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
	LoginsTotal                *prometheus.CounterVec
	TwoFactorTotal             *prometheus.CounterVec
	TokensIssuedTotal          *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors labelled with service and registers them on reg.
func New(reg *prometheus.Registry, service string) *Metrics {
	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests.",
				ConstLabels: constLabels,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "path"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "auth_logins_total",
				Help:        "Total number of password login attempts.",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		TwoFactorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "auth_two_factor_total",
				Help:        "Total number of 2FA operations.",
				ConstLabels: constLabels,
			},
			[]string{"operation", "result"},
		),
		TokensIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "auth_tokens_issued_total",
				Help:        "Total number of token pairs issued.",
				ConstLabels: constLabels,
			},
			[]string{"flow", "result"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.LoginsTotal,
		m.TwoFactorTotal,
		m.TokensIssuedTotal,
	)
	return m
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveTwoFactor(operation, result string) {
	if m == nil {
		return
	}
	m.TwoFactorTotal.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveTokens(flow, result string) {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.WithLabelValues(flow, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency. The path label is the
// matched ServeMux pattern so unknown URLs can't blow up cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sr, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(sr.status)).Inc()
		m.HTTPRequestDurationSeconds.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
