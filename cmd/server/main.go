package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bra3n/bra3n/internal/config"
	"github.com/bra3n/bra3n/internal/database"
	"github.com/bra3n/bra3n/internal/editor"
	"github.com/bra3n/bra3n/internal/handlers"
	"github.com/bra3n/bra3n/internal/logger"
	"github.com/bra3n/bra3n/internal/middleware"
	"github.com/bra3n/bra3n/internal/models"
	"github.com/bra3n/bra3n/internal/plans"
	"github.com/bra3n/bra3n/internal/queue"
	"github.com/bra3n/bra3n/internal/services/billing"
	"github.com/bra3n/bra3n/internal/services/connections"
	"github.com/bra3n/bra3n/internal/services/oidc"
	"github.com/bra3n/bra3n/internal/storage"
	"github.com/bra3n/bra3n/internal/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug mode for LLM API logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

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

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			tp, err := telemetry.InitTracer(context.Background(), "bra3n-api", cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				tracerProvider = tp
				zapLogger.Info("otel_tracer_initialized",
					zap.String("endpoint", cfg.OTELEndpoint),
				)
				defer func() {
					shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer shutdownCancel()
					if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()

	zapLogger.Info("connected_to_database")

	// Redis serves both rate limiting and staged document text
	redisLimiter, err := middleware.NewRedisRateLimiter(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := redisLimiter.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()

	docTextStore, err := storage.NewDocumentTextStore(cfg.RedisURL)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis_for_document_text", zap.Error(err))
	}
	defer func() {
		if err := docTextStore.Close(); err != nil {
			zapLogger.Warn("failed_to_close_document_text_store", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	jobQueue := connectQueue(cfg.RabbitMQURL, zapLogger)
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	// Repositories
	brainRepo := database.NewBrainRepository(db)
	noteRepo := database.NewNoteRepository(db)
	docRepo := database.NewDocumentRepository(db)
	summaryRepo := database.NewSummaryRepository(db)
	connRepo := database.NewConnectionRepository(db)
	usageRepo := database.NewUsageRepository(db)
	oidcConfigRepo := database.NewOIDCConfigRepository(db)
	corsConfigRepo := database.NewCorsConfigRepository(db)
	ratelimitConfigRepo := database.NewRatelimitConfigRepository(db)

	// Plan table with hot reload
	planEvaluator := plans.NewReloader(cfg.PlansFile, zapLogger)
	reloadCtx, reloadCancel := context.WithCancel(context.Background())
	defer reloadCancel()
	go func() {
		if err := planEvaluator.Start(reloadCtx); err != nil && err != context.Canceled {
			zapLogger.Error("plan_reloader_stopped_with_error", zap.Error(err))
		}
	}()

	// Services
	oidcProvider := oidc.NewProvider(oidcConfigRepo)
	jwksManager := oidc.NewJWKSManager()
	billingService := billing.New(cfg.StripeAPIKey, cfg.StripeProPriceID, zapLogger)
	oauthClients := buildOAuthClients(cfg, zapLogger)

	// Per-user editing sessions; saved summaries are fetched straight from
	// the summary repository
	editorSessions := editor.NewManager(editor.NopPresenter{}, summaryRepo, zapLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(oidcProvider)
	healthChecker := handlers.NewHealthChecker(db)
	featureHandler := handlers.NewFeatureHandler(planEvaluator, usageRepo)
	brainHandler := handlers.NewBrainHandler(brainRepo, featureHandler)
	noteHandler := handlers.NewNoteHandler(noteRepo, brainRepo, jobQueue)
	documentHandler := handlers.NewDocumentHandler(docRepo, brainRepo, featureHandler, docTextStore, jobQueue)
	summaryHandler := handlers.NewSummaryHandler(summaryRepo, noteRepo)
	billingHandler := handlers.NewBillingHandler(billingService)
	connectionHandler := handlers.NewConnectionHandler(connRepo, oauthClients)
	editorHandler := handlers.NewEditorHandler(editorSessions, noteRepo)

	r := mux.NewRouter()

	zapLogger.Info("setting_up_middleware")

	if cfg.OTELEnabled && tracerProvider != nil {
		r.Use(otelmux.Middleware("bra3n-api"))
		zapLogger.Info("otel_middleware_enabled")
	}
	r.Use(middleware.SecurityHeaders(cfg.EnableHSTS))
	corsReloader := middleware.NewCORSReloader(corsConfigRepo, cfg.FrontendURL, zapLogger, 1*time.Minute)
	r.Use(corsReloader.Middleware())
	rateLimitReloader := middleware.NewRateLimitReloader(redisLimiter.Client(), ratelimitConfigRepo, "5-S", zapLogger, 1*time.Minute)
	if rateLimitReloader == nil {
		zapLogger.Fatal("failed_to_create_rate_limit_reloader")
	}
	rateLimitMW := rateLimitReloader.Middleware()
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ErrorHandler(zapLogger))
	r.Use(middleware.Audit(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	// API call counting feeds the plan limit evaluator
	r.Use(middleware.UsageTracking(usageRepo))

	// Public routes
	r.HandleFunc("/healthz", healthChecker.HealthCheck).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	openAPIPath := filepath.Join("api", "openapi", "openapi.yaml")
	openAPIHandler := handlers.NewOpenAPIHandler(openAPIPath)
	openAPIHandler.RegisterRoutes(r)

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	authMW := middleware.Auth(db, oidcProvider, jwksManager)

	// Auth routes
	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	loginRouter := authRouter.PathPrefix("/oidc").Subrouter()
	loginRouter.Use(rateLimitMW)
	loginRouter.HandleFunc("/login", authHandler.GetOIDCLogin).Methods("GET")

	protectedAuthRouter := authRouter.PathPrefix("").Subrouter()
	protectedAuthRouter.Use(authMW)
	protectedAuthRouter.Use(rateLimitMW)
	protectedAuthRouter.HandleFunc("/me", authHandler.GetMe).Methods("GET")

	// Feature evaluation
	featuresRouter := apiRouter.PathPrefix("/features").Subrouter()
	featuresRouter.Use(authMW)
	featuresRouter.Use(rateLimitMW)
	featureHandler.RegisterRoutes(featuresRouter)

	// Brains and their contents
	brainsRouter := apiRouter.PathPrefix("/brains").Subrouter()
	brainsRouter.Use(authMW)
	brainsRouter.Use(rateLimitMW)
	brainHandler.RegisterRoutes(brainsRouter)

	notesRouter := apiRouter.PathPrefix("/brains/{brain_id}/notes").Subrouter()
	notesRouter.Use(authMW)
	notesRouter.Use(rateLimitMW)
	noteHandler.RegisterRoutes(notesRouter)

	documentsRouter := apiRouter.PathPrefix("/brains/{brain_id}/documents").Subrouter()
	documentsRouter.Use(authMW)
	documentsRouter.Use(rateLimitMW)
	documentHandler.RegisterRoutes(documentsRouter)

	summariesRouter := apiRouter.PathPrefix("/brains/{brain_id}/notes/{id}/summary").Subrouter()
	summariesRouter.Use(authMW)
	summariesRouter.Use(rateLimitMW)
	summaryHandler.RegisterRoutes(summariesRouter)

	// Editing sessions
	editorRouter := apiRouter.PathPrefix("/editor").Subrouter()
	editorRouter.Use(authMW)
	editorRouter.Use(rateLimitMW)
	editorHandler.RegisterRoutes(editorRouter)

	// Billing
	billingRouter := apiRouter.PathPrefix("/billing").Subrouter()
	billingRouter.Use(authMW)
	billingRouter.Use(rateLimitMW)
	billingHandler.RegisterRoutes(billingRouter)

	// External connections
	connectionsRouter := apiRouter.PathPrefix("/connections").Subrouter()
	connectionsRouter.Use(authMW)
	connectionsRouter.Use(rateLimitMW)
	connectionHandler.RegisterRoutes(connectionsRouter)

	// Catch-all OPTIONS handler for preflight requests
	// The CORS middleware will handle setting headers before this is called
	r.Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// CORS and rate limit hot-reload loops
	go corsReloader.Start(reloadCtx)
	go rateLimitReloader.Start(reloadCtx)

	// DLQ garbage collector
	if dlqPurger, ok := jobQueue.(queue.DLQPurger); ok {
		dlqGC := queue.NewGarbageCollector(dlqPurger, 1*time.Hour, 24*time.Hour)
		go func() {
			if err := dlqGC.Start(reloadCtx); err != nil && err != context.Canceled {
				zapLogger.Error("dlq_garbage_collector_stopped_with_error", zap.Error(err))
			}
		}()
		zapLogger.Info("started_dlq_garbage_collector",
			zap.Duration("interval", 1*time.Hour),
			zap.Duration("retention", 24*time.Hour),
		)
	}

	go func() {
		zapLogger.Info("server_starting",
			zap.String("port", cfg.ServerPort),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	reloadCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
}

// connectQueue connects to RabbitMQ with exponential backoff to ride out
// broker startup delays
func connectQueue(url string, zapLogger *zap.Logger) queue.JobQueue {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		jobQueue, err := queue.NewRabbitMQQueue(url)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return jobQueue
		}

		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}

	zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries",
		zap.Int("max_retries", maxRetries),
		zap.Error(lastErr),
	)
	return nil
}

// buildOAuthClients configures the OAuth client per provider; providers with
// missing credentials are simply absent from the map
func buildOAuthClients(cfg *config.Config, zapLogger *zap.Logger) map[models.ConnectionProvider]*connections.OAuthClient {
	clients := make(map[models.ConnectionProvider]*connections.OAuthClient)

	creds := []struct {
		provider models.ConnectionProvider
		id       string
		secret   string
	}{
		{models.ConnectionProviderNotion, cfg.NotionClientID, cfg.NotionClientSecret},
		{models.ConnectionProviderGoogleDrive, cfg.GoogleClientID, cfg.GoogleClientSecret},
	}

	for _, c := range creds {
		if c.id == "" || c.secret == "" {
			zapLogger.Info("oauth_provider_not_configured",
				zap.String("provider", string(c.provider)),
			)
			continue
		}
		redirectURL := cfg.FrontendURL + "/connections/" + string(c.provider) + "/callback"
		client, err := connections.NewOAuthClient(c.provider, c.id, c.secret, redirectURL)
		if err != nil {
			zapLogger.Warn("failed_to_configure_oauth_provider",
				zap.String("provider", string(c.provider)),
				zap.Error(err),
			)
			continue
		}
		clients[c.provider] = client
	}

	return clients
}

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	// Only expose minimal version info
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
