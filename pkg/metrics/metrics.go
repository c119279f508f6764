// Package metrics exposes the Prometheus collectors of the admin backend.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "splitdine_admin"

// Metrics holds the collectors registered on one registry
type Metrics struct {
	registry *prometheus.Registry

	RestaurantTransitions *prometheus.CounterVec
	OnboardingWrites      *prometheus.CounterVec
	OnboardingFinalized   prometheus.Counter
	ValidationFailures    *prometheus.CounterVec
	EventPublishFailures  prometheus.Counter
	HTTPRequests          *prometheus.CounterVec
	HTTPDuration          *prometheus.HistogramVec
}

// New creates collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RestaurantTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "restaurant_transitions_total",
			Help:      "Restaurant lifecycle transitions by kind.",
		}, []string{"transition"}),
		OnboardingWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "onboarding_writes_total",
			Help:      "Persisted onboarding record writes by operation.",
		}, []string{"operation"}),
		OnboardingFinalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "onboarding_finalized_total",
			Help:      "Restaurants activated through onboarding.",
		}),
		ValidationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Rejected onboarding inputs by reason.",
		}, []string{"reason"}),
		EventPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Lifecycle events that could not be published.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.RestaurantTransitions,
		m.OnboardingWrites,
		m.OnboardingFinalized,
		m.ValidationFailures,
		m.EventPublishFailures,
		m.HTTPRequests,
		m.HTTPDuration,
		prometheus.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Transition counts a restaurant lifecycle transition. Safe on a nil receiver.
func (m *Metrics) Transition(kind string) {
	if m == nil {
		return
	}
	m.RestaurantTransitions.WithLabelValues(kind).Inc()
}

// OnboardingWrite counts a persisted onboarding write. Safe on a nil receiver.
func (m *Metrics) OnboardingWrite(operation string) {
	if m == nil {
		return
	}
	m.OnboardingWrites.WithLabelValues(operation).Inc()
}

// Finalized counts an activated restaurant. Safe on a nil receiver.
func (m *Metrics) Finalized() {
	if m == nil {
		return
	}
	m.OnboardingFinalized.Inc()
}

// ValidationFailure counts a rejected input. Safe on a nil receiver.
func (m *Metrics) ValidationFailure(reason string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(reason).Inc()
}

// PublishFailure counts an event that was not delivered. Safe on a nil receiver.
func (m *Metrics) PublishFailure() {
	if m == nil {
		return
	}
	m.EventPublishFailures.Inc()
}

// ObserveRequest records a served HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}
