package server

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"
	"github.com/robfig/cron/v3"

	"github.com/sagar7778/emailtemp/api"
	"github.com/sagar7778/emailtemp/config"
	"github.com/sagar7778/emailtemp/internal/logger"
	"github.com/sagar7778/emailtemp/internal/throttle"
	"github.com/sagar7778/emailtemp/internal/tracing"
	"github.com/sagar7778/emailtemp/services"
)

// throttleMaxIdle is how long a caller identity may stay idle before its
// throttle entry is pruned.
const throttleMaxIdle = 30 * time.Minute

type Server struct {
	config       *config.Config
	log          logger.Logger
	httpServer   *http.Server
	router       *gin.Engine
	services     *services.Services
	guard        *throttle.Guard
	cron         *cron.Cron
	tracerCloser io.Closer
}

func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	appLogger := logger.NewAppLogger(cfg.Logger)
	appLogger.InitLogger()

	// Initialize tracing
	tracer, closer, err := tracing.NewJaegerTracer(cfg.Tracing, appLogger)
	if err != nil {
		log.Fatalf("Could not initialize jaeger tracer: %s", err.Error())
	}
	opentracing.SetGlobalTracer(tracer)

	// Initialize services
	svcs := services.InitServices(cfg, appLogger)

	// Rate guard shared by every endpoint
	guard := throttle.NewGuard(cfg.AppConfig.ThrottleMinInterval)

	// Initialize Gin
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	return &Server{
		config:       cfg,
		log:          appLogger,
		router:       router,
		services:     svcs,
		guard:        guard,
		cron:         cron.New(),
		tracerCloser: closer,
		httpServer: &http.Server{
			Addr:    ":" + cfg.AppConfig.APIPort,
			Handler: router,
		},
	}, nil
}

func (s *Server) Initialize() error {
	// Keep the throttle map bounded
	_, err := s.cron.AddFunc(s.config.AppConfig.ThrottlePruneSchedule, func() {
		removed := s.guard.Prune(throttleMaxIdle)
		if removed > 0 {
			s.log.Infof("pruned %d idle throttle entries", removed)
		}
	})
	if err != nil {
		return err
	}

	// Setup API routes
	api.RegisterRoutes(s.router, s.services, s.guard, s.log, s.config.AppConfig.SSETickInterval)

	return nil
}

func (s *Server) Run() error {
	if err := s.Initialize(); err != nil {
		return err
	}

	s.cron.Start()

	// Start HTTP server in a goroutine
	go func() {
		s.log.Infof("HTTP server listening on :%s", s.config.AppConfig.APIPort)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("HTTP server error: %v", err)
		}
	}()
	s.log.Info("emailtemp is now running. Press Ctrl+C to exit.")

	return s.waitForShutdown()
}

func (s *Server) waitForShutdown() error {
	// Set up signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Wait for termination signal
	<-stop
	s.log.Info("Shutting down...")

	// Create a context with timeout for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	// Stop the pruning scheduler first, then drain HTTP
	cronCtx := s.cron.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn("Scheduler stop timed out")
	}

	if s.tracerCloser != nil {
		s.tracerCloser.Close()
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Errorf("HTTP server shutdown error: %v", err)
		return err
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}
