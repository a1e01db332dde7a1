package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts served requests by protocol status code
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gemini_pages_requests_total",
		Help: "The total number of requests served, partitioned by response status",
	}, []string{"status"})

	// RequestDuration measures the full request roundtrip
	RequestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gemini_pages_request_duration_seconds",
		Help:    "The time it takes to answer a request, from request line to last body byte",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})

	// ServingFileSize measures the size of files served from disk
	ServingFileSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gemini_pages_serving_file_size_bytes",
		Help:    "The size in bytes of files served from disk",
		Buckets: prometheus.ExponentialBuckets(256, 4, 10),
	})

	// ListingEntries measures the number of entries in synthesized listings
	ListingEntries = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gemini_pages_listing_entries",
		Help:    "The number of visible entries per synthesized directory listing",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	// CGIDuration measures CGI execution roundtrip
	CGIDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "gemini_pages_cgi_duration_seconds",
		Help:    "The time it takes a CGI program to produce its response",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})

	// MaxConns is the configured connection limit shared by all listeners
	MaxConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gemini_pages_max_conns",
		Help: "The configured maximum number of concurrent connections",
	})

	// ConcurrentConns is the number of connections currently being served
	ConcurrentConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gemini_pages_concurrent_conns",
		Help: "The number of connections currently being served",
	})

	// WaitingConns is the number of connections waiting for a serving slot
	WaitingConns = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gemini_pages_waiting_conns",
		Help: "The number of accepted connections waiting for a serving slot",
	})

	// RateLimitBlockedCount counts connections dropped by the source IP rate limiter
	RateLimitBlockedCount = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gemini_pages_rate_limit_blocked_total",
		Help: "The number of connections dropped by the per source IP rate limiter",
	})

	// RateLimitCachedEntries is the number of per source IP limiters kept
	RateLimitCachedEntries = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gemini_pages_rate_limit_cached_entries",
		Help: "The number of source IP rate limiters currently cached",
	}, []string{"op"})

	// RateLimitCacheRequests counts limiter cache hits and misses
	RateLimitCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gemini_pages_rate_limit_cache_requests",
		Help: "The number of source IP limiter cache lookups, partitioned by hit/miss",
	}, []string{"op", "cache"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ServingFileSize)
	prometheus.MustRegister(ListingEntries)
	prometheus.MustRegister(CGIDuration)
	prometheus.MustRegister(MaxConns)
	prometheus.MustRegister(ConcurrentConns)
	prometheus.MustRegister(WaitingConns)
	prometheus.MustRegister(RateLimitBlockedCount)
	prometheus.MustRegister(RateLimitCachedEntries)
	prometheus.MustRegister(RateLimitCacheRequests)
}
