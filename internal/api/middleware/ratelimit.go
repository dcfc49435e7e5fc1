package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/crickwise/dream11-optimizer/internal/services"
	"github.com/crickwise/dream11-optimizer/pkg/utils"
)

// RateLimit throttles a route per client IP.
func RateLimit(limiter *services.ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			utils.SendTooManyRequests(c, "Too many prediction requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
