package http

import (
	"net/http"
	"strconv"
	"time"

	"certledger/internal/domain"

	"github.com/gin-gonic/gin"
)

// enforceRateLimit applies the public verify limit per client IP. A limiter
// failure fails open: verification availability beats strict counting.
func (s *Server) enforceRateLimit(c *gin.Context) bool {
	if s.rateLimiter == nil {
		return true
	}
	decision, err := s.rateLimiter.Allow(c.Request.Context(), c.ClientIP())
	if err != nil {
		return true
	}
	writeRateLimitHeaders(c, decision)
	if !decision.Allowed {
		writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
		return false
	}
	return true
}

func writeRateLimitHeaders(c *gin.Context, decision domain.RateLimitDecision) {
	if decision.Limit > 0 {
		c.Header("RateLimit-Limit", strconv.Itoa(decision.Limit))
	}
	if decision.Remaining >= 0 {
		c.Header("RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	}
	if !decision.ResetAt.IsZero() {
		c.Header("RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
		if !decision.Allowed {
			retryAfter := int64(time.Until(decision.ResetAt).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}
