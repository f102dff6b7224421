package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"example.com/backstage/services/supplychain/config"
	"example.com/backstage/services/supplychain/handlers"
	"example.com/backstage/services/supplychain/metrics"
)

// Server is the HTTP server for the API
type Server struct {
	cfg        config.Config
	router     *gin.Engine
	httpServer *http.Server
	handler    *handlers.SupplyChainHandler
	collector  *metrics.Metrics
}

// NewServer creates a new API server
func NewServer(cfg config.Config, handler *handlers.SupplyChainHandler, collector *metrics.Metrics) *Server {
	server := &Server{
		cfg:       cfg,
		router:    gin.New(),
		handler:   handler,
		collector: collector,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes()

	return server
}

// setupMiddleware adds middleware to the router
func (s *Server) setupMiddleware() {
	// Add request ID middleware
	s.router.Use(RequestIDMiddleware())

	// Add CORS middleware
	if s.cfg.CorsEnabled {
		s.router.Use(CORSMiddleware(s.cfg.CorsOrigins))
	}

	// Add recovery middleware
	s.router.Use(gin.Recovery())

	// Add logging middleware
	s.router.Use(LoggingMiddleware(s.collector))
}

// setupRoutes defines the API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	// API v1 group
	v1 := s.router.Group("/api/v1")

	// Event routes
	eventRoutes := v1.Group("/events")
	{
		eventRoutes.POST("", s.recordEvent)
		eventRoutes.GET("/recent", s.getRecentEvents)
		eventRoutes.GET("/statistics", s.getEventStatistics)
	}

	// Item routes
	itemRoutes := v1.Group("/items")
	{
		itemRoutes.GET("/:id/status", s.getStatus)
		itemRoutes.GET("/:id/analytics", s.getAnalytics)
		itemRoutes.GET("/:id/visualization", s.getVisualization)
	}

	// Alert routes
	alertRoutes := v1.Group("/alerts")
	{
		alertRoutes.GET("", s.listAlerts)
		alertRoutes.GET("/statistics", s.getAlertStatistics)
		alertRoutes.POST("/:id/acknowledge", s.acknowledgeAlert)
		alertRoutes.POST("/:id/resolve", s.resolveAlert)
	}

	// Metrics
	v1.GET("/metrics", s.getMetrics)
}

// getMetrics returns the in-process metric snapshot
func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.collector.GetSnapshot())
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.ServerAddress,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ServerTimeout,
		WriteTimeout: s.cfg.ServerTimeout,
	}

	log.Info().Msgf("HTTP server starting on %s", s.cfg.ServerAddress)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
