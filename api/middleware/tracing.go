package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/sagar7778/emailtemp/internal/tracing"
)

// TracingMiddleware opens a server span per request and propagates it via the
// request context.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracing.StartHttpServerTracerSpanWithHeader(c.Request.Context(), c.FullPath(), c.Request.Header)
		defer span.Finish()
		tracing.TagComponentRest(span)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
