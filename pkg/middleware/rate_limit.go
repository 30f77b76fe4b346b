package middleware

import (
	"net/http"
	"sync"
	"time"

	"lessondesk/pkg/logger"
)

type ContactExtractor func(r *http.Request) string

// ContactRateLimiter throttles booking submissions per student contact
// phone, a sliding-window counter kept in memory.
type ContactRateLimiter struct {
	mu        sync.RWMutex
	requests  map[string][]time.Time
	limit     int
	window    time.Duration
	extractor ContactExtractor
	log       *logger.Logger
	stopCh    chan struct{}
}

func NewContactRateLimiter(limit int, window time.Duration, extractor ContactExtractor, log *logger.Logger) *ContactRateLimiter {
	limiter := &ContactRateLimiter{
		requests:  make(map[string][]time.Time),
		limit:     limit,
		window:    window,
		extractor: extractor,
		log:       log,
		stopCh:    make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

func (rl *ContactRateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for contact, timestamps := range rl.requests {
				if len(timestamps) == 0 || time.Since(timestamps[len(timestamps)-1]) > rl.window {
					delete(rl.requests, contact)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *ContactRateLimiter) Stop() {
	close(rl.stopCh)
}

func (rl *ContactRateLimiter) Allow(contact string) bool {
	if contact == "" {
		return true
	}

	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := rl.requests[contact][:0:0]
	for _, ts := range rl.requests[contact] {
		if now.Sub(ts) < rl.window {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[contact] = valid
		return false
	}

	rl.requests[contact] = append(valid, now)
	return true
}

func ContactRateLimit(limiter *ContactRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contact := extractContact(r, limiter.extractor)

			if contact == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(contact) {
				rejectRateLimited(w, limiter.log, r, contact)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func extractContact(r *http.Request, extractor ContactExtractor) string {
	if extractor == nil {
		return r.Header.Get("X-Contact-Phone")
	}
	return extractor(r)
}

func rejectRateLimited(w http.ResponseWriter, log *logger.Logger, r *http.Request, contact string) {
	log.Warn("Rate limit exceeded",
		"request_id", requestIDFromContext(r.Context()),
		"contact", contact,
		"path", r.URL.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
}

func DefaultContactExtractor(r *http.Request) string {
	return r.Header.Get("X-Contact-Phone")
}
