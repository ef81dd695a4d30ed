package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/duynguyendang/sir/internal/manager"
	"github.com/duynguyendang/sir/pkg/metrics"
)

// Server holds the state for the REST API server.
type Server struct {
	manager *manager.SessionManager
	router  *gin.Engine
	logger  *zap.Logger
}

// NewServer creates a new Server instance.
func NewServer(mgr *manager.SessionManager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	s := &Server{
		manager: mgr,
		router:  r,
		logger:  logger,
	}
	s.setupRoutes()
	return s
}

// Run starts the server on the specified address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for use with an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := s.router.Group("/v1/sessions")
	v1.POST("", s.handleCreateSession)
	v1.DELETE("/:id", s.handleDeleteSession)
	v1.POST("/:id/say", s.handleSay)
	v1.POST("/:id/facts", s.handleAssertFact)
	v1.GET("/:id/facts", s.handleListFacts)
	v1.POST("/:id/query", s.handleQuery)
	v1.GET("/:id/graph", s.handleGraph)
}

// Health check
func (s *Server) healthCheck(c *gin.Context) {
	c.Status(http.StatusOK)
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
