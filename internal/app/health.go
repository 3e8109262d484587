package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	deps map[string]pinger
}

// NewHealthChecker checks whichever storage backends the infrastructure
// opened.
func NewHealthChecker(infra Infrastructure) *HealthChecker {
	deps := make(map[string]pinger, 2)
	if pg := infra.Postgres(); pg != nil {
		deps["postgres"] = pg
	}
	if rd := infra.Redis(); rd != nil {
		deps["redis"] = rd
	}
	return &HealthChecker{deps: deps}
}

func (h *HealthChecker) check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	errs := make(chan error, len(h.deps))
	for name, dep := range h.deps {
		go func() {
			if err := dep.Ping(ctx); err != nil {
				errs <- fmt.Errorf("%s: %w", name, err)
				return
			}
			errs <- nil
		}()
	}

	collected := make([]error, 0, len(h.deps))
	for range h.deps {
		collected = append(collected, <-errs)
	}
	return errors.Join(collected...)
}

func (h *HealthChecker) Handler(c *gin.Context) {
	if err := h.check(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "fail",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "pass",
	})
}
