package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avenahealth/clinical-intake/internal/adapters/cache"
	"github.com/avenahealth/clinical-intake/internal/adapters/database"
	"github.com/avenahealth/clinical-intake/internal/adapters/events"
	"github.com/avenahealth/clinical-intake/internal/adapters/intake"
	"github.com/avenahealth/clinical-intake/internal/adapters/search"
	"github.com/avenahealth/clinical-intake/internal/api/handlers"
	"github.com/avenahealth/clinical-intake/internal/api/routes"
	"github.com/avenahealth/clinical-intake/internal/application/services"
	"github.com/avenahealth/clinical-intake/internal/domain/providers"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/clients/postgres"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/clients/redis"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/clients/typesense"
	"github.com/avenahealth/clinical-intake/internal/infrastructure/observability"
	"github.com/avenahealth/clinical-intake/internal/normalization"
	"github.com/avenahealth/clinical-intake/internal/workup"
	"github.com/avenahealth/clinical-intake/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		// The application degrades to uncached, non-streaming operation.
		log.Warn().Err(err).Msg("failed to initialize Redis client")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Typesense client")
		typesenseClient = nil
	} else {
		log.Info().Msg("Typesense client initialized")
	}

	// Static clinical knowledge: file-based when configured, built-in otherwise
	kb := normalization.DefaultKnowledgeBase()
	if cfg.Knowledge.ClinicalEntitiesPath != "" {
		kb, err = normalization.LoadKnowledgeBase(cfg.Knowledge.ClinicalEntitiesPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Knowledge.ClinicalEntitiesPath).
				Msg("failed to load clinical entities")
		}
	}
	normalizer := normalization.NewNormalizer(kb)

	engine := workup.NewDefaultEngine()
	if cfg.Knowledge.WorkupRulesetsPath != "" {
		rulesets, err := workup.LoadRulesets(cfg.Knowledge.WorkupRulesetsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Knowledge.WorkupRulesetsPath).
				Msg("failed to load workup rulesets")
		}
		engine, err = workup.NewEngine(rulesets)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid workup rulesets")
		}
	}

	// Initialize adapters
	assessmentAdapter := database.NewAssessmentAdapter(pgClient)
	intakeRecordAdapter := database.NewIntakeRecordAdapter(pgClient)
	workupResultAdapter := database.NewWorkupResultAdapter(pgClient)

	var cacheProvider providers.CacheProvider
	var eventBus providers.EventBus
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("event bus initialized")
	}

	pdfTemplateVersion := os.Getenv("PDF_TEMPLATE_VERSION")
	if pdfTemplateVersion == "" {
		pdfTemplateVersion = "pdf-v1"
	}
	packAdapter := intake.NewEvidencePackAdapter(assessmentAdapter, intakeRecordAdapter, engine, pdfTemplateVersion)

	var vocabularyHandler *handlers.VocabularyHandler
	if typesenseClient != nil {
		vocabularyAdapter := search.NewVocabularyAdapter(typesenseClient)
		if err := typesenseClient.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to init Typesense schema")
		} else if err := vocabularyAdapter.IndexKnowledgeBase(ctx, kb); err != nil {
			log.Warn().Err(err).Msg("failed to index clinical vocabulary")
		}
		vocabularyHandler = handlers.NewVocabularyHandler(vocabularyAdapter)
	}

	// Initialize services
	intakeService := services.NewIntakeService(normalizer, assessmentAdapter, intakeRecordAdapter, eventBus, metrics)
	followupService := services.NewFollowupService(intakeRecordAdapter)
	workupService := services.NewWorkupService(engine, packAdapter, workupResultAdapter, assessmentAdapter, eventBus, metrics)
	visitPrepService := services.NewVisitPrepService(intakeRecordAdapter, cacheProvider, metrics)

	// Initialize handlers
	assessmentHandler := handlers.NewAssessmentHandler(intakeService)
	followupHandler := handlers.NewFollowupHandler(followupService)
	workupHandler := handlers.NewWorkupHandler(workupService)
	visitPrepHandler := handlers.NewVisitPrepHandler(visitPrepService)

	router := routes.NewRouter(
		assessmentHandler,
		followupHandler,
		workupHandler,
		visitPrepHandler,
		vocabularyHandler,
		metrics,
	)

	server := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
