package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/sagar7778/emailtemp/api/handlers"
	"github.com/sagar7778/emailtemp/api/middleware"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/throttle"
	"github.com/sagar7778/emailtemp/internal/tracing"
	"github.com/sagar7778/emailtemp/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, guard *throttle.Guard, log logger.Logger, sseTickInterval time.Duration) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if guard == nil {
		panic("Throttle guard cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// Health check endpoint, exempt from throttling
	r.GET("/health", handlers.HealthCheck)

	throttled := r.Group("/")
	throttled.Use(middleware.ThrottleMiddleware(guard))
	throttled.Use(middleware.TracingMiddleware())
	{
		throttled.GET("/providers", handlers.ListProviders(s.Registry))

		throttled.POST("/session", handlers.CreateSession(s.Registry, log))
		throttled.DELETE("/session", handlers.DeleteSession(s.Registry, log))

		throttled.GET("/messages", handlers.ListMessages(s.Registry, log))
		throttled.GET("/messages/:id", handlers.GetMessage(s.Registry, s.Sanitizer, log))

		throttled.GET("/attachments/:id", handlers.GetAttachment(s.Registry, log))

		throttled.GET("/sse", handlers.SSE(sseTickInterval))
	}
}
