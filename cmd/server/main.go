package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"farm-assistant/internal/config"
	"farm-assistant/internal/gemini"
	"farm-assistant/internal/handler"
	"farm-assistant/internal/kv"
	"farm-assistant/internal/llm"
	"farm-assistant/internal/repository"
	"farm-assistant/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Farm Assistant...")

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	configPath := os.Getenv("FARM_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yml"
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	location, err := cfg.Location()
	if err != nil {
		logger.Fatal("Failed to load timezone", zap.Error(err))
	}

	if cfg.Gemini.APIKey == "" {
		logger.Fatal("Gemini API key not configured. Set GEMINI_API_KEY or gemini.api_key in the config file")
	}

	// Initialize storage
	if cfg.Storage.Type == kv.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}
	backend, err := kv.Open(cfg.Storage.Type, cfg.StorageDSN(), logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("type", cfg.Storage.Type), zap.Error(err))
	}
	store := kv.NewAdapter(backend, logger)
	defer store.Close()

	// Repositories migrate legacy data on open
	logbookRepo, err := repository.NewLogbookRepository(store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize logbook", zap.Error(err))
	}
	chatRepo, err := repository.NewChatRepository(store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize chat sessions", zap.Error(err))
	}
	communityRepo, err := repository.NewCommunityRepository(store, nil, logger)
	if err != nil {
		logger.Fatal("Failed to initialize community feed", zap.Error(err))
	}

	// Initialize generative backend with rate limiting
	geminiClient, err := gemini.NewClient(gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		VisionModel: cfg.Gemini.VisionModel,
		VideoModel:  cfg.Gemini.VideoModel,
		ChatModel:   cfg.Gemini.ChatModel,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}
	provider := llm.NewRateLimitedProvider(geminiClient, cfg.Gemini.RequestsPerMinute, logger)
	defer provider.Close()

	// Initialize services
	tracker := service.NewRequestTracker()
	logbook := service.NewLogbook(provider, logbookRepo, tracker, logger)
	chat := service.NewChat(provider, chatRepo, logger)
	community := service.NewCommunity(communityRepo, logger)
	insights := service.NewInsights(provider, tracker, logger)

	if cfg.Community.Seed {
		if err := community.Seed(); err != nil {
			logger.Fatal("Failed to seed community feed", zap.Error(err))
		}
	}

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(logbook, chat, community, insights, location, logger)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+handler.ClientHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register routes
	apiHandler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	modelInfo := provider.GetModelInfo()
	logger.Info("Farm Assistant is running",
		zap.String("address", cfg.Addr()),
		zap.String("storage", cfg.Storage.Type),
		zap.Any("models", modelInfo))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Titles still being generated are written before storage closes
	chat.Wait()

	logger.Info("Server exited")
}
