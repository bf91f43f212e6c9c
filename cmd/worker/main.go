package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bra3n/bra3n/internal/config"
	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/logger"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/queue"
	"github.com/bra3n/bra3n/internal/services/ai"
	"github.com/bra3n/bra3n/internal/storage"
	"github.com/bra3n/bra3n/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		if syncErr := zapLogger.Sync(); syncErr != nil {
			// Ignore sync errors in production
			_ = syncErr
		}
	}()

	zapLogger.Info("Starting worker",
		zap.Bool("debug_mode", debugMode),
	)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("Failed to close database connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to database")

	noteRepo := database.NewNoteRepository(db)
	docRepo := database.NewDocumentRepository(db)
	summaryRepo := database.NewSummaryRepository(db)

	docTextStore, err := storage.NewDocumentTextStore(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := docTextStore.Close(); err != nil {
			zapLogger.Warn("Failed to close document text store", zap.Error(err))
		}
	}()

	jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to RabbitMQ", zap.Error(err))
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("Failed to close RabbitMQ connection", zap.Error(err))
		}
	}()

	zapLogger.Info("Connected to RabbitMQ",
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
	)

	// One summarization provider per model family. A note whose model has no
	// configured provider fails its job with a clear error.
	providers := make(map[models.AIModel]ai.Summarizer)
	if cfg.AnthropicKey != "" {
		claude := ai.NewClaudeProviderWithLogger(cfg.AnthropicKey, cfg.AnthropicBaseURL, "", zapLogger, debugMode)
		providers[claude.Model()] = claude
	}
	if cfg.OpenAIKey != "" {
		openai := ai.NewOpenAIProviderWithLogger(cfg.OpenAIKey, "", "", zapLogger, debugMode)
		providers[openai.Model()] = openai
	}
	if len(providers) == 0 {
		zapLogger.Fatal("No AI provider configured; set ANTHROPIC_API_KEY or OPENAI_API_KEY")
	}
	for model := range providers {
		zapLogger.Info("Initialized AI provider", zap.String("model_family", string(model)))
	}

	summarizer := workers.NewSummarizer(
		providers,
		noteRepo,
		docRepo,
		summaryRepo,
		docTextStore,
		jobQueue,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	msgChan, errChan, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		zapLogger.Fatal("Failed to start consuming messages", zap.Error(err))
	}

	zapLogger.Info("Worker started, consuming messages from queue")

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgChan:
				if !ok {
					zapLogger.Info("Message channel closed")
					return
				}

				if err := summarizer.ProcessJob(ctx, msg); err != nil {
					zapLogger.Error("Failed to process job",
						zap.Error(err),
						zap.String("job_id", msg.GetJob().ID.String()),
						zap.String("job_type", string(msg.GetJob().Type)),
					)
				}
			}
		}
	}()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-errChan:
				if !ok {
					return
				}
				zapLogger.Error("Queue error", zap.Error(err))
			}
		}
	}()

	<-sigChan
	zapLogger.Info("Shutdown signal received, stopping worker...")

	cancel()

	zapLogger.Info("Worker stopped")
}
