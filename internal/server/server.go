package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/procwatch-agent/config"
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	handlers   *Handlers
	auth       *AuthService
	limiter    *RateLimiter
	httpServer *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, mon MonitorSource) *Server {
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		router:   gin.New(),
		handlers: NewHandlers(cfg, mon),
		auth:     NewAuthService(cfg.APIKey, cfg.JWTSecret),
		limiter:  NewRateLimiter(cfg.RateLimitRPS),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(RecoveryMiddleware())
	s.router.Use(LoggerMiddleware())
	s.router.Use(CORSMiddleware(s.cfg.AllowedOrigins))
	s.router.Use(RateLimitMiddleware(s.limiter))
}

func (s *Server) setupRoutes() {
	// Health check (no auth)
	s.router.GET("/health", s.handlers.HealthCheck)

	// API routes; everything but the token exchange is read-only
	api := s.router.Group("/api")
	if s.cfg.AuthEnabled() {
		api.Use(AuthMiddleware(s.auth))
		api.POST("/auth/token", s.issueToken)
	}
	{
		api.GET("/info", s.handlers.GetInfo)

		api.GET("/snapshot", s.handlers.GetSnapshot)
		api.GET("/snapshot/system", s.handlers.GetSystemMetrics)
		api.GET("/snapshot/processes", s.handlers.ListProcesses)

		api.GET("/alerts", s.handlers.ListAlerts)
		api.GET("/rules", s.handlers.ListRules)

		api.GET("/disks", s.handlers.ListDisks)

		api.GET("/services", s.handlers.ListServices)
		api.GET("/services/:name", s.handlers.GetService)
	}
}

// issueToken exchanges a valid API key for a short-lived JWT, so callers
// can avoid sending the long-lived key on every request
func (s *Server) issueToken(c *gin.Context) {
	token, err := s.auth.GenerateToken("viewer", DefaultTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(DefaultTokenTTL.Seconds()),
	})
}

// Run starts the HTTP server and blocks until the context is cancelled
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
		}
	}()

	log.Printf("Starting procwatch agent on %s", s.cfg.Addr())

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Router returns the Gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
