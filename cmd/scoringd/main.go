package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bibbank/scoring-service/internal/application/usecase"
	"github.com/bibbank/scoring-service/internal/domain/port"
	"github.com/bibbank/scoring-service/internal/infrastructure/cache"
	"github.com/bibbank/scoring-service/internal/infrastructure/config"
	"github.com/bibbank/scoring-service/internal/infrastructure/messaging"
	"github.com/bibbank/scoring-service/internal/infrastructure/ml"
	"github.com/bibbank/scoring-service/internal/infrastructure/postgres"
	"github.com/bibbank/scoring-service/internal/infrastructure/schema"
	"github.com/bibbank/scoring-service/internal/infrastructure/telemetry"
	grpcpresentation "github.com/bibbank/scoring-service/internal/presentation/grpc"
	"github.com/bibbank/scoring-service/internal/presentation/rest"
	"github.com/bibbank/scoring-service/pkg/kafka"
	"github.com/bibbank/scoring-service/pkg/observability"
	pgutil "github.com/bibbank/scoring-service/pkg/postgres"
)

func main() {
	if err := run(); err != nil {
		slog.Error("scoring-service failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(cfg.Logging())

	logger.Info("starting scoring-service",
		"version", cfg.ServiceVersion,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Initialize tracing.
	if cfg.Telemetry.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName:    cfg.ServiceName,
			ServiceVersion: cfg.ServiceVersion,
			Endpoint:       cfg.Telemetry.OTLPEndpoint,
			Insecure:       cfg.Telemetry.OTLPInsecure,
			SampleRatio:    cfg.Telemetry.SampleRatio,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() {
				flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer flushCancel()
				_ = shutdown(flushCtx)
			}()
		}
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	metrics, err := telemetry.NewMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("failed to create instruments: %w", err)
	}

	// Scoring engine.
	featureSchema, err := schema.Load(cfg.Model.SchemaPath)
	if err != nil {
		return err
	}
	engine, err := ml.BuildEngine(ml.EngineConfig{
		Schema:            featureSchema,
		ModelPath:         cfg.Model.Path,
		Method:            cfg.Model.ExplanationMethod,
		TopK:              cfg.Model.TopK,
		MaxFeatures:       cfg.Model.MaxFeatures,
		SimulationWorkers: cfg.Model.SimulationWorkers,
	}, logger)
	if err != nil {
		return err
	}

	// Database connection.
	if cfg.DB.AutoMigrate {
		state, err := pgutil.RunMigrations(cfg.DB.URL, cfg.DB.MigrationsDir)
		if err != nil {
			return err
		}
		logger.Info("database schema ready",
			"schema_version", state.Version,
			"migrated", state.Changed,
		)
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pgutil.NewPool(dbCtx, pgutil.Config{
		URL:      cfg.DB.URL,
		MaxConns: int32(cfg.DB.MaxConns),
	})
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	healthHandler := rest.NewHealthHandler(cfg.ServiceName, logger)
	healthHandler.AddCheck("database", func(ctx context.Context) error {
		return pgutil.HealthCheck(ctx, pool)
	})

	// Optional score cache.
	var scoreCache port.ScoreCache
	if cfg.Redis.Addr != "" {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		redisCache := cache.NewRedisScoreCache(client, cfg.Redis.TTL)
		healthHandler.AddCheck("cache", redisCache.Ping)
		scoreCache = redisCache
		logger.Info("score cache enabled", "addr", cfg.Redis.Addr)
	}

	// Kafka.
	kafkaCfg := kafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		TLS:           cfg.Kafka.TLS,
		SASLEnabled:   cfg.Kafka.SASLMechanism != "",
		SASLMechanism: cfg.Kafka.SASLMechanism,
		SASLUsername:  cfg.Kafka.SASLUsername,
		SASLPassword:  cfg.Kafka.SASLPassword,
	}
	producer, err := kafka.NewProducer(kafkaCfg)
	if err != nil {
		return err
	}
	defer producer.Close()
	eventPublisher := messaging.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic, logger)

	// Wire use cases.
	assessmentRepo := postgres.NewAssessmentRepository(pool)
	assessApplicationUC := usecase.NewAssessApplication(engine, assessmentRepo, scoreCache, eventPublisher, metrics, logger)

	handler := grpcpresentation.NewRiskScoringHandler(grpcpresentation.UseCases{
		Assess:   assessApplicationUC,
		Get:      usecase.NewGetAssessment(assessmentRepo),
		List:     usecase.NewListAssessments(assessmentRepo),
		Explain:  usecase.NewExplainAssessment(engine, metrics, logger),
		Simulate: usecase.NewSimulateScenarios(engine, metrics, logger),
		Predict:  usecase.NewPredictDirect(engine, logger),
		Model:    usecase.NewGetModelInfo(engine),
	}, logger)

	// gRPC server.
	grpcServer, err := grpcpresentation.NewServer(handler, cfg.GRPCAddress(), grpcpresentation.ServerOptions{
		TLSCertFile: cfg.TLS.CertFile,
		TLSKeyFile:  cfg.TLS.KeyFile,
		Reflection:  cfg.Environment != "production",
	}, logger)
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	httpMux := http.NewServeMux()
	healthHandler.RegisterRoutes(httpMux)
	httpMux.Handle("GET /metrics", metricsHandler)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      httpMux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := grpcServer.Start(); err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	if cfg.Kafka.ConsumeEnabled {
		applications := messaging.NewApplicationConsumer(assessApplicationUC, logger)
		consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Kafka.ApplicationTopic, applications.Handle, logger)
		if err != nil {
			return err
		}
		defer consumer.Close()

		g.Go(func() error {
			return consumer.Start(gctx)
		})
	}

	logger.Info("scoring-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"explanation_method", engine.ExplanationMethod(),
	)

	// Wait for shutdown signal or the first server failure.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down scoring-service")

		grpcServer.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("scoring-service stopped")
	return nil
}
