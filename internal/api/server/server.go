package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"youtube-scout/internal/api/middleware"
	"youtube-scout/internal/api/v1/handlers"
	"youtube-scout/internal/api/v1/routes"
	"youtube-scout/internal/metrics"
)

// Config represents API server configuration
type Config struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string
}

// Server is the HTTP front door of the transcription service.
type Server struct {
	config     Config
	router     *gin.Engine
	httpServer *http.Server
	logger     *zap.Logger
}

// New builds the gin router and HTTP server around the transcription handler.
func New(config Config, handler *handlers.TranscriptionHandler, m *metrics.Metrics, logger *zap.Logger) *Server {
	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogging(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	routes.Register(router, handler)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	// WriteTimeout must outlive the longest sync wait or gin cuts the
	// connection before the 504 is written.
	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &Server{
		config:     config,
		router:     router,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting api server",
		zap.String("address", s.httpServer.Addr),
		zap.String("environment", s.config.Environment),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down api server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	s.logger.Info("api server shutdown complete")
	return nil
}

// Router returns the gin router, useful for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
