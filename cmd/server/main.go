package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"marrfa-chat/internal/cache"
	"marrfa-chat/internal/config"
	"marrfa-chat/internal/handler"
	"marrfa-chat/internal/kb"
	"marrfa-chat/internal/listing"
	"marrfa-chat/internal/logger"
	"marrfa-chat/internal/nlp"
	"marrfa-chat/internal/repository"
	"marrfa-chat/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()

	zlog.Info("Marrfa Chat",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit))

	handler.Version = Version

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Optional PostgreSQL: pgvector chunk store and search logging
	var repo *repository.PostgresRepository
	if cfg.PostgreSQL.Enabled {
		repo, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			zlog.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer repo.Close()
		zlog.Info("Connected to PostgreSQL database")
	}

	// OpenAI-compatible client
	var aiClient service.AIClient
	if cfg.OpenAI.Enabled {
		aiClient = service.NewOpenAIClient(&cfg.OpenAI, zlog)
		zlog.Info("OpenAI client initialized",
			zap.String("api_base", cfg.OpenAI.APIBase),
			zap.String("chat_model", cfg.OpenAI.ChatModel),
			zap.String("embedding_model", cfg.OpenAI.EmbeddingModel))
	} else {
		zlog.Warn("OpenAI is disabled - fallback classification, synthesis and file analysis will not work. " +
			"Set OPENAI_API_KEY to enable AI features")
	}

	// Knowledge index: database chunks when available, file layout otherwise
	index := loadIndex(cfg, repo, zlog)
	retriever := kb.NewRetriever(index, aiClient, cfg.Knowledge.TopK, zlog)

	// Response cache: Redis when configured, in-process otherwise
	var store cache.Store
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		store = cache.NewRedis(client, zlog)
		zlog.Info("Using Redis response cache", zap.String("addr", cfg.Redis.Address))
	} else {
		store = cache.NewMemory(cfg.Cache.MaxEntries)
	}

	listingClient := listing.NewClient(&cfg.Listing, store, cfg.Cache.PropertyTTL, zlog)

	var labeler nlp.IntentLabeler
	if aiClient != nil {
		labeler = aiClient
	}
	classifier := nlp.NewClassifier(labeler, zlog)

	var searchLog service.SearchLogger
	if repo != nil {
		searchLog = repo
	}

	chatService := service.NewChatService(
		classifier, listingClient, retriever, aiClient, store,
		service.NewUsageLimiter(3), searchLog,
		cfg.Cache, cfg.Listing, zlog,
	)

	zlog.Info("Services initialized")

	// Handlers and router
	chatHandler := handler.NewChatHandler(chatService, classifier, index, cfg.OpenAI.Enabled)

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", chatHandler.Health)
	router.GET("/version", chatHandler.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)
		api.GET("/debug-intent", chatHandler.DebugIntent)
		api.GET("/debug-kb", chatHandler.DebugKB)
	}

	// Start server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		zlog.Info("Starting server", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("Forced shutdown", zap.Error(err))
	}
	zlog.Info("Server stopped")
}

// loadIndex prefers database-backed chunks when PostgreSQL is configured and
// holds any, falling back to the on-disk layout.
func loadIndex(cfg *config.Config, repo *repository.PostgresRepository, zlog *zap.Logger) *kb.Index {
	if repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		chunks, vectors, err := repo.LoadChunks(ctx)
		if err != nil {
			zlog.Warn("Loading chunks from database failed, falling back to files", zap.Error(err))
		} else if len(chunks) > 0 {
			index, err := kb.NewIndex(chunks, vectors)
			if err == nil {
				zlog.Info("Knowledge index loaded from database", zap.Int("chunks", len(chunks)))
				return index
			}
			zlog.Warn("Building index from database chunks failed", zap.Error(err))
		}
	}
	return kb.LoadIndex(cfg.Knowledge.Dir, zlog)
}
