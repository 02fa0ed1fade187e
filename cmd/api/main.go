package main

import (
	"context"
	"log"

	"recruithub/config"
	"recruithub/internal/handler"
	"recruithub/internal/mention"
	appredis "recruithub/internal/redis"
	"recruithub/internal/repository"
	"recruithub/internal/server"
	"recruithub/internal/services"
	"recruithub/pkg/database"
	"recruithub/pkg/logger"

	"gorm.io/gorm"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	var presence *appredis.Presence
	if cfg.RedisEnabled {
		redisClient, err := appredis.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		presence = appredis.NewPresence(redisClient)
	}

	userRepo := repository.NewUserRepository(db)
	candidateRepo := repository.NewCandidateRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	// Presence is optional; a nil mirror leaves the database authoritative
	// and skips the Redis writes.
	var statusMirror services.StatusMirror
	var typingMirror server.PresenceMirror
	if presence != nil {
		statusMirror = presence
		typingMirror = presence
	}

	userService := services.NewUserService(userRepo, statusMirror, l)
	authService := services.NewAuthService(userRepo, cfg)

	hub := server.NewHub(userService, typingMirror, cfg.TypingTTL, l)

	resolver := mention.NewResolver(userRepo)
	chatService := services.NewChatService(messageRepo, candidateRepo, userRepo, notifRepo, resolver, hub, cfg, l)
	notificationService := services.NewNotificationService(notifRepo, userRepo, cfg, l)
	candidateService := services.NewCandidateService(candidateRepo, userRepo, notifRepo, hub, l)

	hub.AttachServices(chatService, notificationService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := server.New(cfg, hub, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		User:          handler.NewUserHandler(userService),
		Candidate:     handler.NewCandidateHandler(candidateService),
		Message:       handler.NewMessageHandler(chatService),
		Notification:  handler.NewNotificationHandler(notificationService),
		WebSocket:     server.NewWebSocketHandler(authService, hub, l),
		HealthChecker: healthChecker(db),
	}, authService)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}

func healthChecker(db *gorm.DB) func() error {
	return func() error {
		return database.HealthCheck(db)
	}
}
