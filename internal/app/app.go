package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/footyarchive/gamelog-api/external/afltables"
	"github.com/footyarchive/gamelog-api/internal/config"
	"github.com/footyarchive/gamelog-api/internal/domain/rawdata"
	"github.com/footyarchive/gamelog-api/internal/infrastructure/repository/memory"
	"github.com/footyarchive/gamelog-api/internal/infrastructure/repository/postgres"
	"github.com/footyarchive/gamelog-api/internal/interfaces/httpapi"
	"github.com/footyarchive/gamelog-api/internal/platform/cache"
	"github.com/footyarchive/gamelog-api/internal/platform/logging"
	"github.com/footyarchive/gamelog-api/internal/platform/resilience"
	"github.com/footyarchive/gamelog-api/internal/usecase"
)

// NewHTTPServer assembles the service: archive client, cache tiers,
// optional postgres payload archive, and the HTTP router. The returned
// cleanup releases every resource the wiring opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	archive, err := afltables.NewClient(afltables.ClientConfig{
		BaseURL:        cfg.ArchiveBaseURL,
		RequestTimeout: cfg.ArchiveTimeout,
		Retry: resilience.RetryPolicy{
			MaxRetries: cfg.ArchiveMaxRetries,
			Interval:   cfg.ArchiveRetryInterval,
		},
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ArchiveCircuitEnabled,
			FailureThreshold: cfg.ArchiveCircuitFailureCount,
			OpenTimeout:      cfg.ArchiveCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ArchiveCircuitHalfOpenMaxReq,
		},
		IndexWorkers: cfg.ArchiveIndexWorkers,
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build archive client: %w", err)
	}

	cleanups := make([]func(), 0, 4)
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var shared cache.SharedStore
	if cfg.RedisEnabled {
		redis, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		cleanups = append(cleanups, func() {
			if err := redis.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		})
		shared = redis
		logger.Info("shared cache enabled")
	} else {
		logger.Info("shared cache disabled", "reason", "REDIS_ENABLED=false")
	}

	tiered, err := cache.NewTiered(cache.NewStore(0), shared, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build cache tiers: %w", err)
	}
	cleanups = append(cleanups, tiered.Close)

	var rawRepo rawdata.Repository
	if cfg.DBEnabled {
		db, err := openDB(cfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		cleanups = append(cleanups, func() {
			if err := db.Close(); err != nil {
				logger.Warn("close database", "error", err)
			}
		})
		rawRepo = postgres.NewRawDataRepository(db)
		logger.Info("raw page archive enabled", "db", dbNameFromURL(cfg.DBURL))
	} else {
		rawRepo = memory.NewRawDataRepository()
		logger.Info("raw page archive running in-memory", "reason", "DB_ENABLED=false")
	}

	gamelogSvc := usecase.NewGameLogService(archive, tiered, rawRepo, usecase.GameLogServiceConfig{
		IndexTTL:             cfg.IndexTTL,
		HistoricalTTL:        cfg.CacheTTLHistorical,
		CurrentSeasonTTL:     cfg.CacheTTLCurrent,
		ProbeMaxCandidates:   cfg.ProbeMaxCandidates,
		BroadenMaxCandidates: cfg.BroadenMaxCandidates,
	}, logger)

	handler := httpapi.NewHandler(gamelogSvc, readinessCheck(shared), logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, true)
	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func readinessCheck(shared cache.SharedStore) func(ctx context.Context) error {
	checker, ok := shared.(interface{ HealthCheck(context.Context) error })
	if !ok {
		return nil
	}
	return func(ctx context.Context) error {
		return checker.HealthCheck(ctx)
	}
}
