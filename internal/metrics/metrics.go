package metrics

import (
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crownium"

// Metrics groups the collectors exposed on /metrics. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	actions  *prometheus.CounterVec
	minted   *prometheus.CounterVec
	credits  *prometheus.CounterVec
	resets   *prometheus.CounterVec
	requests *prometheus.HistogramVec
}

var (
	defaultOnce sync.Once
	defaultReg  *Metrics
)

// Default returns the process-wide metrics set.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultReg = New()
	})
	return defaultReg
}

// New builds a metrics set on its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bot",
			Name:      "actions_total",
			Help:      "Bot menu actions segmented by action and outcome.",
		}, []string{"action", "outcome"}),
		minted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "minted_total",
			Help:      "Crownium credited to users segmented by source.",
		}, []string{"source"}),
		credits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "callback",
			Name:      "credits_total",
			Help:      "Task network credit callbacks segmented by outcome.",
		}, []string{"outcome"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "daily_resets_total",
			Help:      "Daily click reset runs segmented by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		m.actions,
		m.minted,
		m.credits,
		m.resets,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) RecordAction(action, outcome string) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(label(action), label(outcome)).Inc()
}

func (m *Metrics) RecordMinted(source string, amount int64) {
	if m == nil || amount <= 0 {
		return
	}
	m.minted.WithLabelValues(label(source)).Add(float64(amount))
}

func (m *Metrics) RecordCredit(outcome string) {
	if m == nil {
		return
	}
	m.credits.WithLabelValues(label(outcome)).Inc()
}

func (m *Metrics) RecordReset(outcome string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(label(outcome)).Inc()
}

func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(label(route), method, status).Observe(seconds)
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func label(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "unspecified"
	}
	return v
}
