// Package ratelimiter throttles incoming connections per source IP.
package ratelimiter

import (
	"net"
	"time"

	"golang.org/x/time/rate"

	"gemini-pages/internal/lru"
	"gemini-pages/metrics"
)

const (
	// DefaultSourceIPLimitPerSecond is the token refill rate of each
	// per source IP bucket.
	DefaultSourceIPLimitPerSecond = 10.0
	// DefaultSourceIPBurstSize is the bucket capacity, i.e. the number
	// of connections a quiet source may open at once.
	DefaultSourceIPBurstSize = 20

	defaultSourceIPItems              = 5000
	defaultSourceIPExpirationInterval = time.Minute
)

// Option configures a RateLimiter.
type Option func(*RateLimiter)

// RateLimiter keeps an LRU cache of token bucket limiters, one per
// source IP. The now function can be swapped out in unit tests.
type RateLimiter struct {
	now                    func() time.Time
	sourceIPLimitPerSecond float64
	sourceIPBurstSize      int
	sourceIPCache          *lru.Cache
}

// New creates a RateLimiter with default values that can be configured
// via Option functions.
func New(opts ...Option) *RateLimiter {
	rl := &RateLimiter{
		now:                    time.Now,
		sourceIPLimitPerSecond: DefaultSourceIPLimitPerSecond,
		sourceIPBurstSize:      DefaultSourceIPBurstSize,
		sourceIPCache: lru.New(
			"source_ip",
			defaultSourceIPItems,
			defaultSourceIPExpirationInterval,
			metrics.RateLimitCachedEntries,
			metrics.RateLimitCacheRequests,
		),
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// WithNow replaces the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(rl *RateLimiter) {
		rl.now = now
	}
}

// WithSourceIPLimitPerSecond sets the per source IP token refill rate.
func WithSourceIPLimitPerSecond(limit float64) Option {
	return func(rl *RateLimiter) {
		rl.sourceIPLimitPerSecond = limit
	}
}

// WithSourceIPBurstSize sets the per source IP bucket capacity.
func WithSourceIPBurstSize(burst int) Option {
	return func(rl *RateLimiter) {
		rl.sourceIPBurstSize = burst
	}
}

func (rl *RateLimiter) limiter(sourceIP string) *rate.Limiter {
	limiterI, _ := rl.sourceIPCache.FindOrFetch(sourceIP, func() (interface{}, error) {
		return rate.NewLimiter(rate.Limit(rl.sourceIPLimitPerSecond), rl.sourceIPBurstSize), nil
	})

	return limiterI.(*rate.Limiter)
}

// SourceIPAllowed reports whether a new connection from sourceIP fits
// within its rate. A sourceIP that cannot be split into host and port is
// allowed; there is nothing sensible to key the bucket on.
func (rl *RateLimiter) SourceIPAllowed(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	if host == "" {
		return true
	}

	allowed := rl.limiter(host).AllowN(rl.now(), 1)
	if !allowed {
		metrics.RateLimitBlockedCount.Inc()
	}

	return allowed
}
