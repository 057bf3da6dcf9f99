package guard

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	DefaultLimit  = 20
	DefaultWindow = 60 * time.Second
)

// RateLimiter enforces a sliding-window request cap per caller key.
// Keys are "<website_id>:<ip>"; callers without a resolvable IP share
// the "unknown" bucket.
type RateLimiter struct {
	limit   int
	window  time.Duration
	mu      sync.Mutex
	buckets *cache.Cache
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RateLimiter{
		limit:  limit,
		window: window,
		// Idle buckets expire on their own once the window has passed twice.
		buckets: cache.New(2*window, 4*window),
	}
}

// Allow reports whether one more request for key fits inside the window
// and records it if so. Denied requests are not recorded, so a client
// that keeps retrying is unblocked as soon as its allowed stamps age out.
func (l *RateLimiter) Allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	var stamps []time.Time
	if raw, found := l.buckets.Get(key); found {
		stamps = raw.([]time.Time)
	}

	kept := stamps[:0]
	for _, ts := range stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.limit {
		l.buckets.Set(key, kept, cache.DefaultExpiration)
		return false
	}

	kept = append(kept, now)
	l.buckets.Set(key, kept, cache.DefaultExpiration)
	return true
}
