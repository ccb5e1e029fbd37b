package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/becalab/scholarship-api/internal/service"
)

// Metrics records duration and status for every handled request. The
// route template is used as the path label so IDs and slugs do not blow
// up the label cardinality; the scrape endpoint itself is skipped.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "/metrics" {
			c.Next()
			return
		}
		if route == "" {
			route = "unmatched"
		}
		start := time.Now()
		c.Next()
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
