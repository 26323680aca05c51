package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// NotifyLimit bounds how often notifications can be fanned out. The
// pages enforce a retry cooldown client-side; this is the server-side
// backstop against scripted flooding of the owner's channels.
func NotifyLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "notification rate limit exceeded, retry shortly",
			})
			return
		}
		c.Next()
	}
}
