package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/formflow/formflow-backend/internal/extraction/dictionary"
	"github.com/formflow/formflow-backend/internal/extraction/events"
	"github.com/formflow/formflow-backend/internal/extraction/feedback"
	"github.com/formflow/formflow-backend/internal/extraction/fuzzy"
	"github.com/formflow/formflow-backend/internal/extraction/handler"
	"github.com/formflow/formflow-backend/internal/extraction/normalizer"
	"github.com/formflow/formflow-backend/internal/extraction/processor"
	"github.com/formflow/formflow-backend/internal/extraction/service"
	"github.com/formflow/formflow-backend/internal/extraction/storage"
	"github.com/formflow/formflow-backend/internal/extraction/validation"
	"github.com/formflow/formflow-backend/pkg/config"
	"github.com/formflow/formflow-backend/pkg/database"
	"github.com/formflow/formflow-backend/pkg/httputil"
	"github.com/formflow/formflow-backend/pkg/i18n"
	"github.com/formflow/formflow-backend/pkg/logger"
	"github.com/formflow/formflow-backend/pkg/messaging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const serviceName = "extraction-service"

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation(serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(serviceName, cfg.Server.Environment)
	log.Info().Msg("starting Extraction Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dictionaries
	dict, err := loadDictionaries(cfg.Extraction.DictionaryDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionaries")
	}
	log.Info().
		Int("departments", len(dict.Departments())).
		Int("names", len(dict.Names())).
		Int("ink_types", len(dict.InkTypes())).
		Msg("dictionaries loaded")

	// Feedback persistence
	var persister feedback.Persister
	var db *database.DB
	switch cfg.Feedback.Backend {
	case config.FeedbackBackendPostgres:
		db, err = database.Open(ctx, &cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		pg := feedback.NewPostgresPersister(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare feedback schema")
		}
		persister = pg
	default:
		persister = feedback.NewFilePersister(cfg.Feedback.Path)
	}

	feedbackStore, err := feedback.NewStore(ctx, persister, cfg.Feedback.MaxEntries, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load feedback store")
	}

	// Event publisher
	var publisher messaging.EventPublisher = messaging.NoopPublisher{}
	var rmq *messaging.RabbitMQ
	if cfg.RabbitMQ.Enabled {
		rmq, err = messaging.New(&cfg.RabbitMQ, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer rmq.Close()
		go rmq.Watch(ctx)

		publisher, err = messaging.NewPublisher(rmq, messaging.ExchangeExtractionEvents, serviceName, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create event publisher")
		}
	}

	// Extractors, tried in order
	registry := processor.NewRegistry(
		processor.NewVLMExtractor(cfg.Extraction.VisionURL, cfg.Extraction.Timeout),
		processor.NewJSONExtractor(),
	)
	log.Info().Strs("extractors", registry.Names()).Str("vision_url", cfg.Extraction.VisionURL).Msg("extractors registered")

	// Initialize service
	extractionService := service.NewService(
		storage.NewDocumentStore(),
		registry,
		normalizer.New(dict, fuzzy.NewMatcher(), feedbackStore),
		validation.NewEngine(cfg.Validation.ConfidenceThreshold, cfg.Validation.CacheSize),
		feedbackStore,
		events.NewNotifier(publisher, log),
		cfg.Extraction.Concurrency,
		log,
	)

	// Initialize handlers
	extractionHandler := handler.NewHandler(extractionService, cfg.Extraction.MaxUploadSize, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(i18n.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := map[string]interface{}{
			"status":      "healthy",
			"service":     serviceName,
			"feedback":    cfg.Feedback.Backend,
			"corrections": feedbackStore.Len(),
		}
		if db != nil {
			health["database"] = db.Health(r.Context())
		}
		if rmq != nil {
			health["rabbitmq"] = rmq.Health()
		}
		httputil.JSON(w, http.StatusOK, health)
	})

	// API routes
	r.Route("/api/v1/extraction", extractionHandler.Routes)

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func loadDictionaries(dir string) (*dictionary.Dictionaries, error) {
	if dir == "" {
		return dictionary.Default()
	}
	return dictionary.LoadDir(dir)
}
