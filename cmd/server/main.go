package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"intervai/server/internal/config"
	"intervai/server/internal/handlers"
	"intervai/server/internal/jobs"
	"intervai/server/internal/llm"
	_ "intervai/server/internal/llm/gemini"
	_ "intervai/server/internal/llm/groq"
	"intervai/server/internal/metrics"
	"intervai/server/internal/prompts"
	"intervai/server/internal/records"
	"intervai/server/internal/relay"
	"intervai/server/internal/routers"
	"intervai/server/internal/utils"
)

var (
	openDatabase = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	newRedisClient = func(addr string) *redis.Client {
		return redis.NewClient(&redis.Options{Addr: addr})
	}
)

// recordBackend bundles the record store pieces selected by RECORD_BACKEND.
// Every field is nil for the "none" backend.
type recordBackend struct {
	store      records.Store
	repo       *records.Repository
	subscriber *records.Subscriber
	pinger     handlers.Pinger
	close      func() error
}

type pingAll []handlers.Pinger

func (p pingAll) Ping(ctx context.Context) error {
	for _, pinger := range p {
		if err := pinger.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

func initRecordBackend(cfg *config.Config, logger *zap.Logger) (*recordBackend, error) {
	if cfg.RecordBackend == "" || cfg.RecordBackend == "none" {
		return &recordBackend{}, nil
	}

	db, err := openDatabase(cfg.Postgres.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	repo := records.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	switch cfg.RecordBackend {
	case "postgres":
		return &recordBackend{store: repo, repo: repo, pinger: repo}, nil
	case "redis":
		rdb := newRedisClient(cfg.RedisAddr)
		publisher := records.NewPublisher(rdb)
		return &recordBackend{
			store:      publisher,
			repo:       repo,
			subscriber: records.NewSubscriber(rdb, repo, logger),
			pinger:     pingAll{repo, publisher},
			close:      rdb.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported record backend: %s", cfg.RecordBackend)
	}
}

func newRouter(cfg *config.Config) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(cfg.LLMTimeout+10*time.Second),
		metrics.Middleware("intervai"),
	)
	return router
}

func registerRoutes(router *chi.Mux, cfg *config.Config, interviewHandler *handlers.InterviewHandler, recordHandler *handlers.RecordHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler, recordHandler, cfg.JWTSecret, cfg.AuthRequired)
}

func main() {
	logger, err := utils.NewLogger(os.Getenv("APP_ENV") == "development")
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Float64("temperature", cfg.Temperature),
		zap.Duration("llm_timeout", cfg.LLMTimeout),
		zap.String("record_backend", cfg.RecordBackend),
		zap.Bool("auth_required", cfg.AuthRequired))

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	aiProvider, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err), zap.Strings("registered", llm.Registered()))
	}

	interviewRelay := relay.New(aiProvider, promptManager,
		relay.WithTemperature(cfg.Temperature),
		relay.WithTimeout(cfg.LLMTimeout),
		relay.WithLogger(logger))

	backgroundCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	backend, err := initRecordBackend(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize record store, interview records will be disabled", zap.Error(err))
		backend = &recordBackend{}
	}

	var recordHandler *handlers.RecordHandler
	var exporterJob *jobs.RecordExporterJob
	if backend.store != nil {
		recordHandler = handlers.NewRecordHandler(backend.store, backend.repo, logger)

		if backend.subscriber != nil {
			go func() {
				if err := backend.subscriber.Run(backgroundCtx); err != nil {
					logger.Error("Record subscriber stopped", zap.Error(err))
				}
			}()
		}

		exporterJob = jobs.NewRecordExporterJob(backend.repo, &jobs.ExporterConfig{
			Schedule:      cfg.Export.Schedule,
			ExportDir:     cfg.Export.Dir,
			ExportEnabled: cfg.Export.Enabled,
		}, logger)
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start record exporter job", zap.Error(err))
		}

		logger.Info("Interview record store initialized", zap.String("backend", cfg.RecordBackend))
	}

	interviewHandler := handlers.NewInterviewHandler(interviewRelay, logger)
	healthHandler := handlers.NewHealthHandler(aiProvider, promptManager, cfg, backend.pinger)

	router := newRouter(cfg)
	registerRoutes(router, cfg, interviewHandler, recordHandler, healthHandler)

	serverAddr := ":" + cfg.Port

	// http server with timeouts; writes must outlive the upstream call
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	if exporterJob != nil {
		exporterJob.Stop()
	}
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	if backend.close != nil {
		if err := backend.close(); err != nil {
			logger.Warn("Failed to close record backend", zap.Error(err))
		}
	}

	logger.Info("Interview service exited")
}
