package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/Rrens/salespulse/internal/domain"
	"github.com/Rrens/salespulse/internal/metrics"
	"github.com/Rrens/salespulse/internal/ratelimit"
	"github.com/rs/zerolog/log"
)

// Auditor records security events
type Auditor interface {
	Log(ctx context.Context, event domain.SecurityEvent, severity domain.Severity)
}

// RateLimitMiddleware handles rate limiting
type RateLimitMiddleware struct {
	limiter *ratelimit.Limiter
	audit   Auditor
	now     func() time.Time
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(limiter *ratelimit.Limiter, auditor Auditor) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, audit: auditor, now: time.Now}
}

// Limit applies the route family's limit to the client IP. Store failures
// admit the request.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)

		res, policy, err := m.limiter.Allow(r.Context(), client, r.URL.Path)
		if err != nil {
			metrics.RateLimitStoreErrors.Inc()
			log.Warn().Err(err).Str("policy", policy.Name).Msg("Rate limit store unavailable, admitting request")
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retryAfter := res.RetryAfter(m.now())
			metrics.RateLimitRejections.WithLabelValues(policy.Name).Inc()
			if m.audit != nil {
				m.audit.Log(r.Context(), domain.SecurityEvent{
					Action:   domain.ActionRateLimited,
					Resource: "route",
					Metadata: map[string]any{"policy": policy.Name, "limit": res.Limit},
				}, domain.SeverityWarning)
			}
			w.Header().Set("Retry-After", strconv.Itoa(int((retryAfter+time.Second-1)/time.Second)))
			response.TooManyRequests(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr, which RealIP has already
// replaced with the forwarded address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
