package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ergosit/posture-auth/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubLimiter struct {
	result *service.RateLimitResult
	err    error
	keys   []string
}

func (s *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (*service.RateLimitResult, error) {
	s.keys = append(s.keys, key)
	return s.result, s.err
}

func serveLimited(limiter service.RateLimiter) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/api/auth/login", RateLimitMiddleware(limiter, 5, time.Minute, IPBasedKey, zap.NewNop()), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:4321"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		limiter := &stubLimiter{result: &service.RateLimitResult{Allowed: true, Remaining: 4}}
		w := serveLimited(limiter)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
		assert.Equal(t, []string{"/api/auth/login:203.0.113.7"}, limiter.keys)
	})

	t.Run("exceeded", func(t *testing.T) {
		limiter := &stubLimiter{result: &service.RateLimitResult{RetryAfter: 1500 * time.Millisecond}}
		w := serveLimited(limiter)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "2", w.Header().Get("Retry-After"))
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		w := serveLimited(&stubLimiter{err: errors.New("redis down")})
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
