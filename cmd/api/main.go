package main

import (
	"context"
	"log"
	"time"

	"github.com/mioriaty/lms-with-better-auth/config"
	"github.com/mioriaty/lms-with-better-auth/internal/domain/course"
	"github.com/mioriaty/lms-with-better-auth/internal/domain/user"
	"github.com/mioriaty/lms-with-better-auth/internal/handler"
	"github.com/mioriaty/lms-with-better-auth/internal/redis"
	"github.com/mioriaty/lms-with-better-auth/internal/repository"
	"github.com/mioriaty/lms-with-better-auth/internal/server"
	"github.com/mioriaty/lms-with-better-auth/internal/services"
	"github.com/mioriaty/lms-with-better-auth/internal/storage"
	"github.com/mioriaty/lms-with-better-auth/pkg/database"
	"github.com/mioriaty/lms-with-better-auth/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)

	if err := database.DB.AutoMigrate(
		&user.User{},
		&course.Course{},
		&course.Chapter{},
		&course.Lesson{},
	); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	store, err := storage.NewClient(context.Background(), storage.S3Config{
		Region:     cfg.S3Region,
		Bucket:     cfg.S3Bucket,
		AccessKey:  cfg.S3AccessKey,
		SecretKey:  cfg.S3SecretKey,
		Endpoint:   cfg.S3Endpoint,
		PublicBase: cfg.S3PublicBase,
		PresignTTL: cfg.PresignTTL,
	})
	if err != nil {
		log.Fatalf("Failed to build storage client: %v", err)
	}

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	limiter := redis.NewRateLimiter(redisClient, redis.DefaultRateLimitConfig())

	userRepo := repository.NewUserRepository(database.DB)
	courseRepo := repository.NewCourseRepository(database.DB)
	structureRepo := repository.NewStructureRepository(database.DB)

	authService := services.NewAuthService(userRepo, cfg.JWTSecret, time.Duration(cfg.JWTExpiryMin)*time.Minute)
	uploadService := services.NewUploadService(store, cfg.MaxUploadBytes)
	courseService := services.NewCourseService(courseRepo)
	structureService := services.NewStructureService(structureRepo)

	handlers := &server.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Upload:    handler.NewUploadHandler(uploadService, l),
		Course:    handler.NewCourseHandler(courseService, store, l),
		Structure: handler.NewStructureHandler(structureService, l),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
