package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MessagesTotal counts messages appended to channel histories.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querychat",
			Subsystem: "conversation",
			Name:      "messages_total",
			Help:      "Messages appended to channel histories",
		},
		[]string{"channel", "sender"},
	)

	// BackendRequestsTotal counts calls to the query service by outcome.
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querychat",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Query service calls",
		},
		[]string{"channel", "outcome"},
	)

	// BackendRequestDuration observes query service latency.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "querychat",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Query service call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"channel"},
	)

	// DialogTransitionsTotal counts follow-up dialog state changes.
	DialogTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querychat",
			Subsystem: "dialog",
			Name:      "transitions_total",
			Help:      "Follow-up dialog transitions",
		},
		[]string{"from", "to"},
	)

	// AskRequestsTotal counts /ask requests served by the query service.
	AskRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querychat",
			Subsystem: "ask",
			Name:      "requests_total",
			Help:      "Questions answered by the query service",
		},
		[]string{"status"},
	)

	// HTTPRequestsTotal counts chat API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "querychat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)
