// Package metrics defines the Prometheus metrics exported on /metrics.
// Everything registers with the default registry through promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "workforce"

// HTTPRequestsTotal counts handled requests.
// Labels: method, route (the gin route pattern, or "unmatched"), status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures handler latency.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// AuthEventsTotal counts authentication outcomes.
// Labels:
//   - event: register, login, refresh, logout
//   - result: success or the error code returned
var AuthEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_events_total",
		Help:      "Total number of authentication events by outcome.",
	},
	[]string{"event", "result"},
)

// RefreshReuseTotal counts rotated refresh tokens presented again.
var RefreshReuseTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refresh_token_reuse_total",
		Help:      "Total number of refresh token reuse detections.",
	},
)

// TasksCreatedTotal counts created tasks by priority.
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by priority.",
	},
	[]string{"priority"},
)

// TaskGenerationDuration measures calls to the task suggestion model.
// Label: result ("ok" or "error").
var TaskGenerationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "task_generation_duration_seconds",
		Help:      "Duration of task suggestion requests to the language model.",
		Buckets:   []float64{.25, .5, 1, 2, 5, 10, 20, 40},
	},
	[]string{"result"},
)

// RateLimitRejectedTotal counts requests refused by the limiter.
var RateLimitRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejected_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"scope"},
)

// RateLimitErrorsTotal counts limiter backend failures (requests are let through).
var RateLimitErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_errors_total",
		Help:      "Total number of rate limiter backend errors.",
	},
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
