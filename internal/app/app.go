package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/party-leaderboard/internal/config"
	"github.com/riskibarqy/party-leaderboard/internal/domain/roster"
	"github.com/riskibarqy/party-leaderboard/internal/infrastructure/directory"
	"github.com/riskibarqy/party-leaderboard/internal/infrastructure/snapshotcache"
	"github.com/riskibarqy/party-leaderboard/internal/infrastructure/teamstore/memory"
	"github.com/riskibarqy/party-leaderboard/internal/infrastructure/teamstore/postgres"
	"github.com/riskibarqy/party-leaderboard/internal/interfaces/httpapi"
	"github.com/riskibarqy/party-leaderboard/internal/platform/cache"
	idgen "github.com/riskibarqy/party-leaderboard/internal/platform/id"
	"github.com/riskibarqy/party-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/party-leaderboard/internal/platform/resilience"
	"github.com/riskibarqy/party-leaderboard/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

// App owns the HTTP server and everything that has to be released after it
// stops.
type App struct {
	Server  *http.Server
	Engine  *usecase.SyncEngine
	closers []func()
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	a := &App{}

	store, closeStore, err := newTeamStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	people, err := directory.Load(cfg.DirectoryPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load directory: %w", err)
	}
	logger.Info("directory loaded", "people", people.Len(), "path", cfg.DirectoryPath)

	var snapshots usecase.SnapshotCache
	if cfg.SnapshotCachePath != "" {
		snapshots = snapshotcache.NewFile(cfg.SnapshotCachePath)
	}

	engine := usecase.NewSyncEngine(store, snapshots, people, logger, usecase.SyncEngineConfig{
		HighlightDuration: cfg.HighlightDuration,
	})
	a.Engine = engine
	a.closers = append(a.closers, engine.Close)
	if err := engine.Start(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("start sync engine: %w", err)
	}

	sessions := cache.NewStore(cfg.MinigameSessionTTL)
	a.closers = append(a.closers, sweepEvery(sessions, cfg.MinigameSessionTTL/2, logger))
	minigames := usecase.NewMinigameService(sessions, nil, logger)

	handler := httpapi.NewHandler(engine, minigames, logger, httpapi.HandlerOptions{
		PublicBaseURL: cfg.PublicBaseURL,
		StreamBuffer:  cfg.StreamBuffer,
	})
	router := httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminKey:           cfg.AdminKey,
	})
	if cfg.AdminKey == "" {
		logger.Warn("admin routes disabled", "reason", "ADMIN_KEY empty")
	}

	a.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	return a, nil
}

// Close releases resources in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func newTeamStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (roster.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		return newPostgresStore(ctx, cfg, logger)
	default:
		store := memory.NewStore(idgen.NewRandomGenerator())
		if cfg.StoreSeed {
			if err := memory.Seed(ctx, store, memory.DemoTeams()); err != nil {
				return nil, nil, fmt.Errorf("seed memory store: %w", err)
			}
		}
		logger.Info("team store ready", "driver", config.StoreDriverMemory, "seeded", cfg.StoreSeed)
		return store, func() {}, nil
	}
}

func newPostgresStore(ctx context.Context, cfg config.Config, logger *logging.Logger) (roster.Store, func(), error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBBinaryParameters)
	dbName := dbNameFromURL(dsn)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbName),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		// The engine starts from the snapshot cache and retries on the next reload.
		logger.Warn("postgres ping failed", "db", dbName, "error", err)
	}

	opts := postgres.Options{
		Channel: cfg.StoreListenChannel,
		Breaker: resilience.NewCircuitBreakerFromConfig(cfg.StoreCircuit),
		Logger:  logger,
	}
	if cfg.StoreListenEnabled {
		opts.ListenDSN = dsn
	}
	if cfg.StoreSeed {
		logger.Warn("STORE_SEED ignored", "driver", config.StoreDriverPostgres)
	}

	logger.Info("team store ready",
		"driver", config.StoreDriverPostgres,
		"db", dbName,
		"listen", cfg.StoreListenEnabled,
		"channel", cfg.StoreListenChannel,
	)

	return postgres.NewStore(db, opts), func() {
		if err := db.Close(); err != nil {
			logger.Warn("close postgres", "error", err)
		}
	}, nil
}

func sweepEvery(store *cache.Store, interval time.Duration, logger *logging.Logger) func() {
	if interval <= 0 {
		interval = time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := store.Sweep(ctx); removed > 0 {
					logger.Debug("minigame sessions expired", "removed", removed, "live", store.Len())
				}
			}
		}
	}()
	return cancel
}
