// Package app wires the pipeline, storage, clients, and HTTP server into one
// runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.uber.org/zap"

	"coachlens/internal/api/server"
	"coachlens/internal/app/api"
	"coachlens/internal/app/api/gemini"
	openaiapi "coachlens/internal/app/api/openai"
	"coachlens/internal/app/pipeline"
	"coachlens/internal/app/repository"
	"coachlens/internal/app/repository/pg"
	"coachlens/internal/app/repository/sqlite"
	"coachlens/internal/app/storage"
	"coachlens/internal/config"
)

// App bundles the long-lived components. The serve command starts the pool
// and server; cleanup closes the store.
type App struct {
	Config  *config.Config
	Store   repository.JobStore
	Queue   *pipeline.Queue
	Pool    *pipeline.Pool
	Service *pipeline.Service
	Server  *server.Server
}

func newApp(cfg *config.Config, store repository.JobStore, queue *pipeline.Queue,
	pool *pipeline.Pool, service *pipeline.Service, srv *server.Server) *App {
	return &App{
		Config:  cfg,
		Store:   store,
		Queue:   queue,
		Pool:    pool,
		Service: service,
		Server:  srv,
	}
}

func provideStore(cfg *config.Config) (repository.JobStore, func(), error) {
	var (
		store repository.JobStore
		err   error
	)
	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err = pg.NewStore(cfg.PostgresDSN)
	default:
		store, err = sqlite.NewStore(cfg.SQLitePath)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open job store: %w", err)
	}
	return store, func() { store.Close() }, nil
}

func provideMediaStore(ctx context.Context, cfg *config.Config) (*storage.MinioMediaStore, error) {
	return storage.NewMinioMediaStore(ctx, storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
}

func provideTranscriber() api.Transcriber {
	return openaiapi.NewTranscriber(openaiapi.GetClient())
}

func provideAnalyzer(ctx context.Context, cfg *config.Config) (api.Analyzer, error) {
	switch cfg.AnalysisProvider {
	case config.ProviderGemini:
		return gemini.NewAnalyzer(ctx, cfg.APIKeys.Gemini, cfg.AnalysisModel)
	default:
		return openaiapi.NewAnalyzer(openaiapi.GetClient(), cfg.AnalysisModel), nil
	}
}

func provideQueue(cfg *config.Config) *pipeline.Queue {
	return pipeline.NewQueue(cfg.QueueCapacity)
}

func providePool(runner *pipeline.Runner, queue *pipeline.Queue, cfg *config.Config, log *zap.Logger) *pipeline.Pool {
	return pipeline.NewPool(runner, queue, cfg.WorkerCount, log)
}

func provideZapLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var (
		log *zap.Logger
		err error
	)
	if cfg.Environment == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	return log, func() { log.Sync() }, nil
}

func provideSlogLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func provideServer(cfg *config.Config, service *pipeline.Service, log *slog.Logger) *server.Server {
	return server.NewServer(server.Config{
		Host:         cfg.Host,
		Port:         cfg.Port,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		Environment:  cfg.Environment,
	}, service, log)
}
