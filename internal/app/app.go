package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/polybridge/clob-bridge/internal/bridge"
	"github.com/polybridge/clob-bridge/internal/storage"
	"github.com/polybridge/clob-bridge/pkg/config"
	"github.com/polybridge/clob-bridge/pkg/healthprobe"
	"github.com/polybridge/clob-bridge/pkg/httpserver"
)

// App wires the order pipeline behind the HTTP server for serve mode.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	probe      *healthprobe.Probe
	httpServer *httpserver.Server
	pipeline   *bridge.Pipeline
	storage    storage.Storage
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	probe := healthprobe.New()

	store, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	pipeline := bridge.NewPipeline(cfg.FeeRateTTL, store, logger)

	httpServer := httpserver.New(&httpserver.Config{
		Port:     cfg.HTTPPort,
		Logger:   logger,
		Probe:    probe,
		Pipeline: pipeline,
	})

	return &App{
		cfg:        cfg,
		logger:     logger,
		probe:      probe,
		httpServer: httpServer,
		pipeline:   pipeline,
		storage:    store,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		return storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
	}

	return storage.NewConsoleStorage(logger), nil
}
