// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storerate"

// HTTPRequestsTotal counts completed requests.
// Labels: method, route (chi pattern), status (numeric code).
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests handled.",
	},
	[]string{"method", "route", "status"},
)

var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// AuthFailuresTotal counts rejected requests.
// Label reason: missing_token, token_malformed, token_signature_invalid,
// token_expired, forbidden.
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by authentication or authorization guards.",
	},
	[]string{"reason"},
)

// RatingsWrittenTotal counts rating writes.
// Label outcome: created, overwritten, updated.
var RatingsWrittenTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ratings_written_total",
		Help:      "Total number of rating writes, by outcome.",
	},
	[]string{"outcome"},
)

// StatsCacheTotal counts admin stats cache lookups.
// Label result: hit, miss, error.
var StatsCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Admin dashboard cache lookups, by result.",
	},
	[]string{"result"},
)
