package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond int // Sustained request rate allowed per client
	Burst             int // Maximum burst size per client
}

// clientLimiter tracks a token bucket per client IP.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

func newLimiterStore(config RateLimitConfig) *limiterStore {
	s := &limiterStore{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(config.RequestsPerSecond),
		burst:   config.Burst,
	}
	go s.cleanupLoop(3 * time.Minute)
	return s
}

func (s *limiterStore) get(clientID string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.clients[clientID]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.clients[clientID] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// cleanupLoop evicts clients not seen within the TTL so the map does not
// grow without bound.
func (s *limiterStore) cleanupLoop(ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for id, c := range s.clients {
			if now.Sub(c.lastSeen) > ttl {
				delete(s.clients, id)
			}
		}
		s.mu.Unlock()
	}
}

// RateLimitMiddleware implements per-client token bucket rate limiting.
// Requests over the limit receive 429 with the standard error envelope.
func RateLimitMiddleware(config RateLimitConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	store := newLimiterStore(config)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID := clientIP(r)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerSecond))

			if !store.get(clientID).Allow() {
				logger.Warn("Rate limit exceeded",
					zap.String("client_id", clientID),
					zap.String("path", r.URL.Path),
				)

				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", "1")
				RespondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr, falling back to the raw value
// for non host:port addresses.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
