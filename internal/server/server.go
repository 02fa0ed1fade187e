package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruithub/config"
	"recruithub/internal/handler"
	"recruithub/internal/middleware"
	"recruithub/internal/services"
	"recruithub/internal/transport/httpdto"
	"recruithub/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
	hub        *Hub
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth          *handler.AuthHandler
	User          *handler.UserHandler
	Candidate     *handler.CandidateHandler
	Message       *handler.MessageHandler
	Notification  *handler.NotificationHandler
	WebSocket     *WebSocketHandler
	HealthChecker func() error
}

func New(cfg *config.Config, hub *Hub, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
		hub:    hub,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if handlers.HealthChecker != nil {
			if err := handlers.HealthChecker(); err != nil {
				c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
				return
			}
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	s.engine.GET("/ws", handlers.WebSocket.Connect)

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	authed := middleware.AuthMiddleware(authService)

	users := s.engine.Group("/v1/users", authed)
	{
		users.GET("/me", handlers.User.Me)
		users.GET("/recruiters", handlers.User.Recruiters)
	}

	candidates := s.engine.Group("/v1/candidates", authed)
	{
		candidates.POST("", handlers.Candidate.Create)
		candidates.GET("", handlers.Candidate.List)
		candidates.GET("/:id", handlers.Candidate.Get)
		candidates.PUT("/:id", handlers.Candidate.Update)
		candidates.DELETE("/:id", handlers.Candidate.Delete)
	}

	messages := s.engine.Group("/v1/messages", authed)
	{
		messages.GET("/candidate/:id", handlers.Message.List)
		messages.POST("/candidate/:id", handlers.Message.Send)
		messages.PUT("/:id", handlers.Message.Edit)
		messages.DELETE("/:id", handlers.Message.Delete)
		messages.POST("/:id/read", handlers.Message.MarkRead)
	}

	notifications := s.engine.Group("/v1/notifications", authed)
	{
		notifications.GET("", handlers.Notification.List)
		notifications.GET("/stats", handlers.Notification.Stats)
		notifications.GET("/offline", handlers.Notification.Offline)
		notifications.PUT("/mark-all-read", handlers.Notification.MarkAllRead)
		notifications.PUT("/:id/read", handlers.Notification.MarkRead)
		notifications.DELETE("/clear-all", handlers.Notification.ClearAll)
		notifications.DELETE("/:id", handlers.Notification.Delete)
	}
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	// Connections drop before the listener so every affected user is flipped
	// offline while the database is still reachable.
	if s.hub != nil {
		s.hub.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
