package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mioriaty/lms-with-better-auth/internal/redis"
	"github.com/mioriaty/lms-with-better-auth/internal/services"
	"github.com/mioriaty/lms-with-better-auth/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// LimitCheck is one scoped rate-limit check keyed by the caller's identity.
// The redis.RateLimiter Allow* methods satisfy it.
type LimitCheck func(ctx context.Context, userID string) (*redis.RateLimitResult, error)

// RateLimitMiddleware denies with 429 once the caller's window is exhausted.
// It must run after AuthMiddleware so the fingerprint is the user id, not an IP.
func RateLimitMiddleware(check LimitCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := services.UserIDFromContext(c.Request.Context())
		if !ok {
			// No user context, auth middleware will reject first
			c.Next()
			return
		}

		result, err := check(c.Request.Context(), userID.String())
		if err != nil {
			c.JSON(http.StatusInternalServerError, httpdto.NewError("rate limit error"))
			c.Abort()
			return
		}

		setRateLimitHeaders(c, result)

		if !result.Allowed {
			c.JSON(http.StatusTooManyRequests, httpdto.NewError("Too many requests"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// setRateLimitHeaders sets standard rate limit response headers
func setRateLimitHeaders(c *gin.Context, result *redis.RateLimitResult) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(int64(result.ResetIn.Seconds()), 10))
}
