package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bookkeeperapp/bookkeeper-server/internal/http/response"
	"github.com/bookkeeperapp/bookkeeper-server/internal/ratelimit"
)

// authPathPrefix is the route group throttled per client address.
const authPathPrefix = "/api/v1/auth/"

// newAuthRateLimiter allows perMinute attempts per client with a burst of
// the same size.
func newAuthRateLimiter(perMinute int) *ratelimit.KeyedRateLimiter {
	rps := float64(perMinute) / time.Minute.Seconds()
	return ratelimit.New(rps, perMinute)
}

// RateLimitMiddleware rate limits requests under prefix by client address.
// Returns 429 Too Many Requests when limit is exceeded.
func RateLimitMiddleware(limiter *ratelimit.KeyedRateLimiter, prefix string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, prefix) {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if !limiter.Allow(key) {
				logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
