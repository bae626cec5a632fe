package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storybook-server/internal/config"
	"storybook-server/internal/database"
	"storybook-server/internal/handler"
	"storybook-server/internal/logger"
	"storybook-server/internal/media"
	"storybook-server/internal/messaging"
	"storybook-server/internal/middleware"
	"storybook-server/internal/pipeline"
	"storybook-server/internal/repository"
	"storybook-server/internal/service"
	"storybook-server/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: "json",
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	zapLogger.Info("Starting storybook server",
		zap.String("env", cfg.Env),
		zap.String("port", cfg.ServerPort))

	ctx := context.Background()

	fetcher := media.NewFetcher(30 * time.Second)
	textGen, err := service.NewTextGenerator(cfg, fetcher, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to create text generator", zap.Error(err))
	}
	imageClient := service.NewGeminiImageClient(cfg, zapLogger)
	publisher := storage.NewSupabasePublisher(cfg, zapLogger)
	illustrator := service.NewIllustrator(cfg, imageClient, publisher, fetcher, zapLogger)
	storeOpener := repository.NewRedisStoreOpener(cfg, zapLogger)

	var ownership repository.StoryOwnershipStore
	if cfg.OwnershipEnabled() {
		if err := database.ApplyMigrations(cfg.GetDSN()); err != nil {
			zapLogger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		pool, err := database.NewPool(ctx, cfg)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database",
				zap.String("dsn", cfg.GetMaskedDSN()), zap.Error(err))
		}
		defer pool.Close()
		ownership = repository.NewPgOwnershipStore(pool, zapLogger)
		zapLogger.Info("Story ownership index enabled", zap.String("dsn", cfg.GetMaskedDSN()))
	} else {
		zapLogger.Info("Story ownership index disabled, DB_HOST is not set")
	}

	var notifier messaging.CompletionNotifier
	if cfg.NotificationsEnabled() {
		notifier, err = messaging.NewRabbitNotifier(cfg, zapLogger)
		if err != nil {
			zapLogger.Fatal("Failed to connect to rabbitmq", zap.Error(err))
		}
		defer func() { _ = notifier.Close() }()
	} else {
		zapLogger.Info("Completion notifications disabled, RABBITMQ_URL is not set")
	}

	p := pipeline.New(textGen, illustrator, storeOpener, ownership, notifier, cfg, zapLogger)
	storyHandler := handler.NewStoryHandler(p, storeOpener, illustrator, ownership, cfg, zapLogger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.GinZapLogger(zapLogger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.GetAllowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	prom := ginprometheus.NewPrometheus("storybook")
	prom.Use(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	storyHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		zapLogger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server stopped")
}
