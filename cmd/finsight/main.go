package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/liliang-cn/finsight/internal/analysis"
	"github.com/liliang-cn/finsight/internal/api"
	"github.com/liliang-cn/finsight/internal/config"
	"github.com/liliang-cn/finsight/internal/llm"
	"github.com/liliang-cn/finsight/internal/observability/metrics"
	"github.com/liliang-cn/finsight/internal/repository"
	"github.com/liliang-cn/finsight/internal/secrets"
	"github.com/liliang-cn/finsight/internal/service"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Secrets: .env / environment first, then the config file
	envStore, err := secrets.NewEnvStore(cfg.LLM.EnvFile)
	if err != nil {
		logger.Fatal("Failed to load env file", zap.String("path", cfg.LLM.EnvFile), zap.Error(err))
	}
	store := secrets.Chain{envStore, secrets.MapStore{cfg.LLM.SecretKey: cfg.LLM.APIKey}}
	if _, err := store.Lookup(cfg.LLM.SecretKey); err != nil {
		logger.Warn("Gemini API key not configured, AI features will report an error",
			zap.String("secret", cfg.LLM.SecretKey),
		)
	}

	// Conversation log; in memory unless configured otherwise
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	conversationRepo := repository.NewConversationRepository(db)

	metrics.Init()

	// Initialize services
	factory := llm.GeminiFactory{}
	engine := analysis.NewEngine(cfg.Analysis.Labels, analysis.SubstringMatcher{})
	ingestService := service.NewIngestService(
		analysis.NewCoercer(cfg.Analysis.NumberFormat()),
		cfg.Upload.MaxBytes,
		logger,
	)
	chatService := service.NewChatService(
		cfg.LLM.Model,
		cfg.LLM.SecretKey,
		store,
		factory,
		conversationRepo,
		logger,
	)
	commentaryService := service.NewCommentaryService(
		cfg.LLM.Model,
		cfg.LLM.SecretKey,
		store,
		factory,
		logger,
	)
	analysisService := service.NewAnalysisService(ingestService, engine, chatService, logger)

	// Setup router
	router := api.SetupRouter(api.Services{
		Analysis:   analysisService,
		Commentary: commentaryService,
		Chat:       chatService,
		State:      service.NewState(),
	}, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: cfg.Server.AllowOrigins,
	})

	// Create HTTP server; AI calls can take a while, so no write timeout
	srv := &http.Server{
		Addr:        cfg.Address(),
		Handler:     router,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting finsight server",
			zap.String("address", cfg.Address()),
			zap.String("model", cfg.LLM.Model),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
