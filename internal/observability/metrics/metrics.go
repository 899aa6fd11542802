package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmanager_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "taskmanager_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmanager_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	issuesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskmanager_issues_created_total",
		Help: "Count of issues created",
	})

	commentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taskmanager_comments_created_total",
		Help: "Count of comments created",
	})

	authzDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taskmanager_authz_denials_total",
		Help: "Count of authorization denials by action",
	}, []string{"action"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveLogin increments the login counter with a success/failure result.
func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

// ObserveIssueCreated increments the created-issue counter.
func ObserveIssueCreated() {
	issuesCreated.Inc()
}

// ObserveCommentCreated increments the created-comment counter.
func ObserveCommentCreated() {
	commentsCreated.Inc()
}

// ObserveAuthzDenial increments the denial counter for an action.
func ObserveAuthzDenial(action string) {
	authzDenials.WithLabelValues(action).Inc()
}
