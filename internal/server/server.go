package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcw/timing-analyze/config"
	"github.com/marcw/timing-analyze/internal/job"
	"github.com/marcw/timing-analyze/internal/pipeline"
	"github.com/marcw/timing-analyze/internal/storage"
)

// Server handles HTTP requests for the timing analyzer
type Server struct {
	cfg      *config.Config
	router   *gin.Engine
	jobs     *job.Manager
	pipeline *pipeline.Pipeline
	store    storage.Storage
}

// New creates a new HTTP server instance
func New(cfg *config.Config) (*Server, error) {
	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	router := gin.Default()

	server := &Server{
		cfg:      cfg,
		router:   router,
		jobs:     job.NewManager(),
		pipeline: pipeline.New(cfg, store),
		store:    store,
	}

	server.setupRoutes(router)
	return server, nil
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", s.healthCheck)

	api := router.Group("/api/v1")
	{
		api.POST("/analyze", s.analyze)
		api.GET("/jobs/:id", s.getJobStatus)
		api.DELETE("/jobs/:id", s.cancelJob)
		api.GET("/jobs", s.listJobs)
		api.GET("/reports/:slug/*file", s.getReportFile)
	}
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "timing-analyze",
	})
}
