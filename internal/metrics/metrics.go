package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "salespulse"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Number of HTTP requests, labeled by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	RateLimitRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "rejections_total",
		Help:      "Number of requests rejected by the rate limiter, labeled by policy.",
	}, []string{"policy"})

	RateLimitStoreErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratelimit",
		Name:      "store_errors_total",
		Help:      "Number of rate limit store failures that were let through.",
	})

	AuditEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "events_total",
		Help:      "Number of security events enqueued, labeled by severity.",
	}, []string{"severity"})

	AuditEventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "events_dropped_total",
		Help:      "Number of security events dropped because the queue was full.",
	})

	AuditSinkErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "audit",
		Name:      "sink_errors_total",
		Help:      "Number of failed sink writes, labeled by sink.",
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RateLimitRejections,
		RateLimitStoreErrors,
		AuditEventsTotal,
		AuditEventsDropped,
		AuditSinkErrors,
	)
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
