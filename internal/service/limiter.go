package service

import (
	"sync"
	"time"
)

// UsageLimiter caps how many queries an anonymous session may send per day.
// Counts live in memory and reset when the date changes; logged-in users
// bypass the limiter entirely at the call site.
type UsageLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	limit  int
	day    string
	now    func() time.Time
}

// NewUsageLimiter creates a limiter allowing limit queries per session per
// day.
func NewUsageLimiter(limit int) *UsageLimiter {
	if limit <= 0 {
		limit = 3
	}
	return &UsageLimiter{
		counts: make(map[string]int),
		limit:  limit,
		now:    time.Now,
	}
}

// SetClock replaces the time source. Test hook; call before concurrent use.
func (l *UsageLimiter) SetClock(now func() time.Time) {
	l.now = now
}

// Allow records one query for the session and reports whether it is within
// the limit. Sessions without an id share one bucket, so an anonymous client
// that strips its session id gains nothing.
func (l *UsageLimiter) Allow(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := l.now().Format("2006-01-02")
	if day != l.day {
		l.day = day
		l.counts = make(map[string]int)
	}

	l.counts[sessionID]++
	return l.counts[sessionID] <= l.limit
}
