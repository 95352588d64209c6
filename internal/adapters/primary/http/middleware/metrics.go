package middleware

import (
	"time"

	"ml-prediction-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request count, latency and in-flight gauge. Paths are the
// matched route templates so unknown URLs do not explode label cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.RecordRequestStart()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordRequestFinish(c.Request.Method, path, c.Writer.Status(), time.Since(start).Seconds())
	}
}
