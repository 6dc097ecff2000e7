package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"todo-api/internal/metrics"
	"todo-api/internal/service"
)

// RateLimitMiddleware limita por IP de cliente. Sin limiter deja pasar todo.
func RateLimitMiddleware(limiter service.RateLimiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		if !limiter.Allow(scope + ":" + c.ClientIP()) {
			metrics.RateLimited.WithLabelValues(scope).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
