// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPRequests counts served requests by route pattern and status class.
var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledger",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests served, by route and status class.",
}, []string{"route", "status"})

// HTTPDuration observes request latency per route.
var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "ledger",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency.",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// RateLimited counts requests rejected by the rate limiter.
var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ledger",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected with 429.",
})

// LedgerOperations counts store-backed operations by name and outcome.
var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledger",
	Subsystem: "core",
	Name:      "operations_total",
	Help:      "Ledger operations by name and result (ok, invalid, error).",
}, []string{"operation", "result"})

// EventsPublished counts ledger events handed to the broker.
var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledger",
	Subsystem: "events",
	Name:      "published_total",
	Help:      "Ledger events published, by kind and result.",
}, []string{"kind", "result"})

// MirrorApplied counts events applied by the spreadsheet mirror worker.
var MirrorApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledger",
	Subsystem: "mirror",
	Name:      "events_applied_total",
	Help:      "Ledger events applied to the spreadsheet mirror, by kind and result.",
}, []string{"kind", "result"})

// TagCacheLookups counts tag catalog cache hits and misses.
var TagCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ledger",
	Subsystem: "tags",
	Name:      "cache_lookups_total",
	Help:      "Tag catalog cache lookups by outcome (hit, miss).",
}, []string{"outcome"})

// Result classifies err for the result label.
func Result(err error, invalid func(error) bool) string {
	switch {
	case err == nil:
		return "ok"
	case invalid != nil && invalid(err):
		return "invalid"
	default:
		return "error"
	}
}

// StatusClass maps 204 to "2xx" and so on.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// SuspiciousRequests counts requests flagged by the security detector.
var SuspiciousRequests = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "ledger",
	Subsystem: "http",
	Name:      "suspicious_requests_total",
	Help:      "Requests matching a known probing pattern.",
})
