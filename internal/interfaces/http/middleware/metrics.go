package middleware

import (
	"time"

	"github.com/agencyos/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no route, keeping cardinality bounded
const unmatchedRoute = "unmatched"

// Metrics records request count and latency per route template
func Metrics(m *telemetry.HTTPMetrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.Observe(c.Request.Context(), c.Request.Method, routeLabel(c), c.Writer.Status(), time.Since(start))
	}
}
