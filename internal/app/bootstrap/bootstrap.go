package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	eventcatalogservice "opendata/contexts/open-data/event-catalog-service"
	"opendata/contexts/open-data/event-catalog-service/adapters/feeds"
	"opendata/contexts/open-data/event-catalog-service/adapters/metrics"
	postgresadapter "opendata/contexts/open-data/event-catalog-service/adapters/postgres"
	"opendata/contexts/open-data/event-catalog-service/application/workers"
	"opendata/internal/platform/config"
	"opendata/internal/platform/db"
	"opendata/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server          *httpserver.Server
	postgres        *db.Postgres
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

type HarvesterApp struct {
	postgres  *db.Postgres
	harvester workers.Harvester
	logger    *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	pg, err := connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	module := newCatalog(cfg, pg, registry, logger)
	server := httpserver.New(module, httpserver.Options{
		Addr:           normalizeAddr(cfg.HTTPPort),
		IdentityHeader: cfg.IdentityHeader,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		HarvestToken:   cfg.HarvestToken,
		Registry:       registry,
		Ready:          pg.Ping,
	}, logger)

	return &APIApp{
		server:          server,
		postgres:        pg,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}, nil
}

func BuildHarvester() (*HarvesterApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "harvester")
	pg, err := connect(cfg, logger)
	if err != nil {
		return nil, err
	}

	module := newCatalog(cfg, pg, prometheus.NewRegistry(), logger)
	return &HarvesterApp{
		postgres:  pg,
		harvester: module.Harvester,
		logger:    logger,
	}, nil
}

func connect(cfg config.Config, logger *slog.Logger) (*db.Postgres, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(context.Background(), cfg.PostgresDSN, db.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		LogQueries:      cfg.DBLogQueries,
	})
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgresadapter.Migrate(pg.DB); err != nil {
			_ = pg.Close()
			return nil, err
		}
		logger.Info("catalog schema migrated",
			"event", "bootstrap_schema_migrated",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return pg, nil
}

func newCatalog(cfg config.Config, pg *db.Postgres, registerer prometheus.Registerer, logger *slog.Logger) eventcatalogservice.Module {
	events := postgresadapter.NewEventRepository(pg.DB, logger)
	sources := postgresadapter.NewSourceRepository(pg.DB, logger)
	return eventcatalogservice.NewModule(eventcatalogservice.Dependencies{
		Events:        events,
		Sources:       sources,
		EventUpserter: events,
		SourceLister:  sources,
		Fetcher:       feeds.NewHTTPFetcher(cfg.FetchTimeout, cfg.FetchAttempts, logger),
		Parser:        feeds.Parser{},
		Metrics:       metrics.NewHarvestMetrics(registerer),
		Clock:         postgresadapter.SystemClock{},
		IDGenerator:   postgresadapter.UUIDGenerator{Domain: cfg.IDDomain},
		SiteURL:       cfg.SiteURL,
		Logger:        logger,
	})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

// Run performs a single harvest sweep.
func (h *HarvesterApp) Run(ctx context.Context) (workers.SweepReport, error) {
	h.logger.Info("harvester app started",
		"event", "bootstrap_harvester_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
	)
	return h.harvester.RunOnce(ctx)
}

func (h *HarvesterApp) Close() error {
	if h.postgres != nil {
		return h.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
