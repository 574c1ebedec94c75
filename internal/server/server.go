package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mioriaty/lms-with-better-auth/config"
	"github.com/mioriaty/lms-with-better-auth/internal/handler"
	"github.com/mioriaty/lms-with-better-auth/internal/middleware"
	"github.com/mioriaty/lms-with-better-auth/internal/redis"
	"github.com/mioriaty/lms-with-better-auth/internal/services"
	"github.com/mioriaty/lms-with-better-auth/internal/transport/httpdto"
	"github.com/mioriaty/lms-with-better-auth/pkg/database"
	"github.com/mioriaty/lms-with-better-auth/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth      *handler.AuthHandler
	Upload    *handler.UploadHandler
	Course    *handler.CourseHandler
	Structure *handler.StructureHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
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
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter *redis.RateLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewError("unhealthy"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/login", handlers.Auth.Login)
	}

	// Public catalogue
	s.engine.GET("/v1/courses", handlers.Course.ListPublished)

	authed := middleware.AuthMiddleware(authService)
	admin := middleware.RequireAdmin()
	sessionGate := middleware.RateLimitMiddleware(limiter.AllowUploadSession)
	partGate := middleware.RateLimitMiddleware(limiter.AllowUploadPart)
	abortGate := middleware.RateLimitMiddleware(limiter.AllowUploadAbort)
	structureGate := middleware.RateLimitMiddleware(limiter.AllowStructure)

	s3Group := s.engine.Group("/v1/s3", authed, admin)
	{
		s3Group.POST("/upload", sessionGate, handlers.Upload.Presign)
		s3Group.POST("/multipart/init", sessionGate, handlers.Upload.InitMultipart)
		s3Group.POST("/multipart/upload-part", partGate, handlers.Upload.UploadPart)
		s3Group.POST("/multipart/complete", sessionGate, handlers.Upload.CompleteMultipart)
		s3Group.POST("/multipart/abort", abortGate, handlers.Upload.AbortMultipart)
		s3Group.DELETE("/delete", sessionGate, handlers.Upload.DeleteObject)
	}

	adminGroup := s.engine.Group("/v1/admin", authed, admin)
	{
		adminGroup.GET("/courses", handlers.Course.ListOwn)
		adminGroup.POST("/courses", structureGate, handlers.Course.Create)
		adminGroup.GET("/courses/:courseId", handlers.Course.GetDetail)
		adminGroup.PUT("/courses/:courseId", structureGate, handlers.Course.Update)
		adminGroup.DELETE("/courses/:courseId", structureGate, handlers.Course.Delete)

		adminGroup.POST("/courses/:courseId/chapters", structureGate, handlers.Structure.CreateChapter)
		adminGroup.PUT("/courses/:courseId/chapters/reorder", structureGate, handlers.Structure.ReorderChapters)
		adminGroup.DELETE("/courses/:courseId/chapters/:chapterId", structureGate, handlers.Structure.DeleteChapter)

		adminGroup.POST("/chapters/:chapterId/lessons", structureGate, handlers.Structure.CreateLesson)
		adminGroup.PUT("/chapters/:chapterId/lessons/reorder", structureGate, handlers.Structure.ReorderLessons)
		adminGroup.DELETE("/chapters/:chapterId/lessons/:lessonId", structureGate, handlers.Structure.DeleteLesson)

		adminGroup.PUT("/lessons/:lessonId", structureGate, handlers.Course.UpdateLesson)
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
