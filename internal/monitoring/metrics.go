// Package monitoring holds the Prometheus collectors of the triage server.
package monitoring

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	registry *prometheus.Registry

	// Triage metrics
	Classifications *prometheus.CounterVec
	RedFlags        prometheus.Counter
	Unrecognized    prometheus.Counter
	IncompleteInput *prometheus.CounterVec

	// Advisory metrics
	AdviceMatches *prometheus.CounterVec
	ChatMessages  *prometheus.CounterVec
	ChatLatency   prometheus.Histogram

	// Session metrics
	ActiveSessions prometheus.Gauge
	SessionsTotal  prometheus.Counter

	// Feedback metrics
	FeedbackOperations *prometheus.CounterVec

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
}

// NewMetrics creates a private registry and registers every collector on it.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		Classifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Total number of triage classifications",
		}, []string{"department", "urgency"}),
		RedFlags: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "red_flags_total",
			Help:      "Total number of classifications escalated by a red-flag symptom",
		}),
		Unrecognized: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unrecognized_symptoms_total",
			Help:      "Total number of classifications that fell back to the generic rule",
		}),
		IncompleteInput: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incomplete_input_total",
			Help:      "Total number of rejected submissions per intake stage",
		}, []string{"stage"}),

		AdviceMatches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advice_matches_total",
			Help:      "Total number of advisory lookups per matched rule",
		}, []string{"rule"}),
		ChatMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Total number of chat rounds by outcome",
		}, []string{"status"}),
		ChatLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chat_round_duration_seconds",
			Help:      "Time from a user message to the assistant reply",
			Buckets:   []float64{.1, .25, .5, 1, 1.5, 2, 3, 5},
		}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Current number of sessions held in memory",
		}),
		SessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of sessions created",
		}),

		FeedbackOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_operations_total",
			Help:      "Total number of feedback store operations",
		}, []string{"operation", "status"}),

		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path", "status"}),
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

// Registry exposes the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

// Middleware records request counts and latencies by route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := fmt.Sprintf("%d", c.Writer.Status())
		m.RequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// ObserveFeedback counts one feedback store operation.
func (m *Metrics) ObserveFeedback(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.FeedbackOperations.WithLabelValues(operation, status).Inc()
}
