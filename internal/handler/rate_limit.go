package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ergosit/posture-auth/internal/dto"
	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RateLimitMiddleware creates a rate limiting middleware. Limiter failures
// let the request through.
func RateLimitMiddleware(limiter service.RateLimiter, limit int, window time.Duration, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)

		result, err := limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter.Round(time.Second).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.JSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: "rate limit exceeded, try again in " + strconv.Itoa(retryAfter) + "s",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// IPBasedKey keys the limiter on client IP and route, so each limited
// endpoint has its own budget.
func IPBasedKey(c *gin.Context) string {
	return c.FullPath() + ":" + c.ClientIP()
}
