package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yapa-dev/techwatch/internal/metrics"
)

// PrometheusMiddleware creates a middleware for collecting Prometheus metrics
func PrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(
			method,
			path,
			statusCode,
			serviceName,
		).Inc()

		metrics.HTTPRequestDuration.WithLabelValues(
			method,
			path,
			serviceName,
		).Observe(duration)
	})
}
