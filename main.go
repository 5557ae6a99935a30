package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/examhub/exam-service/internal/cache"
	"github.com/examhub/exam-service/internal/chatbot"
	"github.com/examhub/exam-service/internal/config"
	"github.com/examhub/exam-service/internal/events"
	"github.com/examhub/exam-service/internal/extraction"
	"github.com/examhub/exam-service/internal/genai"
	"github.com/examhub/exam-service/internal/handlers"
	"github.com/examhub/exam-service/internal/models"
	"github.com/examhub/exam-service/internal/repositories/postgres"
	"github.com/examhub/exam-service/internal/services"
	"github.com/examhub/exam-service/internal/utils"
	"github.com/examhub/exam-service/internal/validator"
	"github.com/examhub/exam-service/pkg"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "exam-service",
		Short:        "Exam authoring, attempts and grading API",
		SilenceUsage: true,
	}

	serve := serveCmd()
	root.AddCommand(serve, migrateCmd(), extractCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger := newLogger(cfg)

			db, err := pkg.InitDatabase(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if err := postgres.AutoMigrate(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			logger.Info("Database schema is up to date")
			return nil
		},
	}
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Generate question drafts from a local document and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExtract,
	}
	f := cmd.Flags()
	f.String("type", string(models.MultipleChoice), "Question type (mcq, true_false, short_answer, essay)")
	f.IntP("count", "n", 5, "Number of questions (1-50)")
	f.StringP("difficulty", "d", string(models.DifficultyMedium), "Difficulty (easy, medium, hard)")
	return cmd
}

func newLogger(cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := newLogger(cfg)

	questionType, _ := cmd.Flags().GetString("type")
	count, _ := cmd.Flags().GetInt("count")
	difficulty, _ := cmd.Flags().GetString("difficulty")

	if !models.QuestionType(questionType).IsValid() {
		return fmt.Errorf("unknown question type %q", questionType)
	}
	if count < 1 || count > 50 {
		return fmt.Errorf("count must be between 1 and 50, got %d", count)
	}

	text, err := extraction.ReadText(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	extractor := extraction.NewService(genaiConfig(cfg), logger)
	result := extractor.ExtractQuestions(cmd.Context(), text, models.QuestionType(questionType), count, models.DifficultyLevel(difficulty))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func genaiConfig(cfg *config.Config) genai.Config {
	return genai.Config{
		Enabled: cfg.GenAI.Enabled,
		APIKey:  cfg.GenAI.APIKey,
		BaseURL: cfg.GenAI.BaseURL,
		Model:   cfg.GenAI.Model,
	}
}

func reusePolicy(scope string) services.AttemptReusePolicy {
	if scope == config.ReuseScopeStudent {
		return services.ReuseSameStudent
	}
	return services.ReuseAnyInExam
}

func newPublisher(cfg *config.Config, logger *slog.Logger) (events.EventPublisher, error) {
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.Topic, logger)
		if err != nil {
			return nil, err
		}
		return publisher, nil
	}
	return events.NewGoChannelPublisher(cfg.Events.Topic, logger), nil
}

func runServe() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	slogLogger := newLogger(cfg)
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, caching disabled", "error", err)
			redisClient = nil
		}
	}

	// Initialize repositories
	repoManager := postgres.NewRepositoryManager(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repoManager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}
	repo := repoManager.GetRepository()

	publisher, err := newPublisher(cfg, slogLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}

	// Initialize services
	serviceManager := services.NewServiceManager(db, repo, slogLogger, validator.New(), services.ServiceManagerConfig{
		ReusePolicy: reusePolicy(cfg.AttemptReuseScope),
		Upload: services.UploadSettings{
			Dir:               cfg.Upload.Dir,
			MaxSize:           cfg.Upload.MaxSize,
			AllowedExtensions: cfg.Upload.AllowedExtensions,
		},
		Publisher:    publisher,
		Extractor:    extraction.NewService(genaiConfig(cfg), slogLogger),
		Chatbot:      chatbot.NewService(genaiConfig(cfg), slogLogger),
		CacheManager: cache.NewCacheManager(redisClient),
	})
	if err := serviceManager.Initialize(context.Background()); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	handlerManager := handlers.NewHandlerManager(serviceManager, logger)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.Upload.MaxSize
	handlers.SetupMiddleware(router, logger, cfg.CORSOrigins)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}

	// Closes the database and Redis connections
	if err := repoManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to close connections", "error", err)
	}

	logger.Info("Server exited")
	return nil
}
