package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter enforces per-client request rates and daily upload quotas on
// the document ingestion endpoint. Clients are keyed by IP address.
type RateLimiter struct {
	mu sync.Mutex

	// Request rate limits. Zero disables the corresponding check.
	requestsPerMinute int
	requestsPerHour   int

	// Daily quotas. Zero disables the corresponding check.
	maxRequestsPerDay int
	maxUploadPerDay   int64 // bytes of document data per day

	clients map[string]*clientUsage
}

// clientUsage tracks one client's rolling counters.
type clientUsage struct {
	requestsLastMinute int
	requestsLastHour   int
	requestsToday      int
	uploadedToday      int64

	lastRequest time.Time
	dayStart    time.Time
}

// NewRateLimiter creates a rate limiter with the given limits. A zero limit
// disables that check.
func NewRateLimiter(requestsPerMinute, requestsPerHour, maxRequestsPerDay int, maxUploadPerDay int64) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		requestsPerHour:   requestsPerHour,
		maxRequestsPerDay: maxRequestsPerDay,
		maxUploadPerDay:   maxUploadPerDay,
		clients:           make(map[string]*clientUsage),
	}
}

// Allow checks whether a request carrying uploadSize bytes of document data
// is within the client's limits, and records it if so.
func (rl *RateLimiter) Allow(clientID string, uploadSize int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	usage := rl.usageFor(clientID, now)
	rl.rollWindows(usage, now)

	if err := rl.checkRates(usage, now); err != nil {
		return err
	}
	if err := rl.checkQuotas(usage, uploadSize, now); err != nil {
		return err
	}

	usage.requestsLastMinute++
	usage.requestsLastHour++
	usage.requestsToday++
	usage.uploadedToday += uploadSize
	usage.lastRequest = now
	return nil
}

// rollWindows resets counters whose time window has passed.
func (rl *RateLimiter) rollWindows(usage *clientUsage, now time.Time) {
	if now.YearDay() != usage.dayStart.YearDay() || now.Year() != usage.dayStart.Year() {
		usage.requestsToday = 0
		usage.uploadedToday = 0
		usage.dayStart = now
	}
	if now.Sub(usage.lastRequest) >= time.Minute {
		usage.requestsLastMinute = 0
	}
	if now.Sub(usage.lastRequest) >= time.Hour {
		usage.requestsLastHour = 0
	}
}

func (rl *RateLimiter) checkRates(usage *clientUsage, now time.Time) error {
	if rl.requestsPerMinute > 0 && usage.requestsLastMinute >= rl.requestsPerMinute {
		return &RateLimitError{
			Window:     "minute",
			Limit:      rl.requestsPerMinute,
			RetryAfter: time.Minute - now.Sub(usage.lastRequest),
		}
	}
	if rl.requestsPerHour > 0 && usage.requestsLastHour >= rl.requestsPerHour {
		return &RateLimitError{
			Window:     "hour",
			Limit:      rl.requestsPerHour,
			RetryAfter: time.Hour - now.Sub(usage.lastRequest),
		}
	}
	return nil
}

func (rl *RateLimiter) checkQuotas(usage *clientUsage, uploadSize int64, now time.Time) error {
	resets := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())

	if rl.maxRequestsPerDay > 0 && usage.requestsToday >= rl.maxRequestsPerDay {
		return &QuotaExceededError{
			Kind:   "requests",
			Limit:  int64(rl.maxRequestsPerDay),
			Used:   int64(usage.requestsToday),
			Resets: resets,
		}
	}
	if rl.maxUploadPerDay > 0 && usage.uploadedToday+uploadSize > rl.maxUploadPerDay {
		return &QuotaExceededError{
			Kind:   "upload",
			Limit:  rl.maxUploadPerDay,
			Used:   usage.uploadedToday,
			Resets: resets,
		}
	}
	return nil
}

func (rl *RateLimiter) usageFor(clientID string, now time.Time) *clientUsage {
	usage, ok := rl.clients[clientID]
	if !ok {
		usage = &clientUsage{lastRequest: now, dayStart: now}
		rl.clients[clientID] = usage
	}
	return usage
}

// Usage returns a snapshot of a client's counters.
func (rl *RateLimiter) Usage(clientID string) (requestsToday int, uploadedToday int64) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if usage, ok := rl.clients[clientID]; ok {
		return usage.requestsToday, usage.uploadedToday
	}
	return 0, 0
}

// RateLimitError indicates a request rate limit was hit.
type RateLimitError struct {
	Window     string // "minute" or "hour"
	Limit      int
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s (limit: %d, retry after: %v)", e.Window, e.Limit, e.RetryAfter)
}

// QuotaExceededError indicates a daily quota was exhausted.
type QuotaExceededError struct {
	Kind   string // "requests" or "upload"
	Limit  int64
	Used   int64
	Resets time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s (used: %d, limit: %d, resets: %s)",
		e.Kind, e.Used, e.Limit, e.Resets.Format(time.RFC3339))
}
