package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	apierrors "github.com/sagar7778/emailtemp/api/errors"
	"github.com/sagar7778/emailtemp/internal/throttle"
)

// ThrottleMiddleware rejects requests arriving faster than the guard's
// minimum interval per caller identity.
func ThrottleMiddleware(guard *throttle.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !guard.Allow(CallerKey(c)) {
			apierrors.RespondRateLimited(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerKey derives the throttle bucket from the caller's network identity,
// falling back to a fixed bucket when none can be determined.
func CallerKey(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.GetHeader("X-Real-IP")); realIP != "" {
		return realIP
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return throttle.UnknownKey
}
