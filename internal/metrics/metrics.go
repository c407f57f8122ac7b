// Package metrics holds the prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "authbot"

// Redeem / link / notification results.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
	ResultExpired  = "expired"
	ResultNoAcct   = "account_not_found"
	ResultError    = "error"
)

var (
	CodesIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "linking_codes_issued_total",
		Help:      "Linking codes issued.",
	})

	IssueCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "linking_code_collisions_total",
		Help:      "Generated linking codes that collided with a stored one and were regenerated.",
	})

	CodesRedeemed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "linking_codes_redeemed_total",
		Help:      "Redeem attempts by result.",
	}, []string{"result"})

	CodesCompacted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "linking_codes_compacted_total",
		Help:      "Expired linking codes removed by compaction.",
	})

	Links = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "account_links_total",
		Help:      "Account link attempts by result.",
	}, []string{"result"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Outbound notifications by channel and result.",
	}, []string{"channel", "result"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)
