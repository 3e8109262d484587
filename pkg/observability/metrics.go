package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PrometheusHandler exposes handler on a gin route. A nil handler means
// telemetry was not initialised and the route reports 503.
func PrometheusHandler(handler http.Handler) gin.HandlerFunc {
	if handler == nil {
		return func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "metrics are not enabled",
			})
		}
	}
	return gin.WrapH(handler)
}
