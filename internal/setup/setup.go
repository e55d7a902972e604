package setup

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/go-sod/knn/internal/cache"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/logging"
	"github.com/go-sod/knn/internal/metrics"
	modelDb "github.com/go-sod/knn/internal/model/database"
	"github.com/go-sod/knn/internal/registry"
	"github.com/go-sod/knn/internal/srvenv"
)

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type CacheConfigProvider interface {
	CacheConfig() *cache.Config
}

type RegistryConfigProvider interface {
	RegistryConfig() *registry.Config
}

type MetricsConfigProvider interface {
	MetricsConfig() *metrics.Config
}

// Setup reads the environment into config and builds the service environment
// for every provider interface config implements.
func Setup(ctx context.Context, config interface{}) (*srvenv.SrvEnv, error) {
	logger := logging.FromContext(ctx)
	var serverEnvOpts []srvenv.Option
	if err := envconfig.Process("", config); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var (
		db    *database.DB
		store registry.Store
		c     cache.Cache = cache.Noop{}
	)
	if provider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, provider.DatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		db = dbFromEnv
		store = modelDb.New(db)
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	if provider, ok := config.(CacheConfigProvider); ok {
		logger.Info("configuring cache")
		cacheFromEnv, err := cache.NewFromConfig(ctx, provider.CacheConfig())
		if err != nil {
			closeDB(ctx, db)
			return nil, fmt.Errorf("unable to connect to cache: %w", err)
		}
		c = cacheFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithCache(c))
	}

	if provider, ok := config.(MetricsConfigProvider); ok {
		logger.Info("configuring metrics")
		exporter, err := metrics.NewExporter(provider.MetricsConfig())
		if err != nil {
			closeDB(ctx, db)
			return nil, fmt.Errorf("unable to create metrics exporter: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithMetricsHandler(exporter))
	}

	if provider, ok := config.(RegistryConfigProvider); ok {
		logger.Info("configuring registry")
		provideFn, err := ProvideRegistryFor(provider.RegistryConfig(), store, c)
		if err != nil {
			closeDB(ctx, db)
			return nil, fmt.Errorf("unable create registry provide function: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithRegistry(provideFn))
	}

	return srvenv.New(serverEnvOpts...), nil
}

func ProvideRegistryFor(cfg *registry.Config, store registry.Store, c cache.Cache) (registry.ProvideFn, error) {
	if cfg.DefaultK <= 0 {
		return nil, fmt.Errorf("default k must be positive, got %d", cfg.DefaultK)
	}
	if _, err := geom.DistanceFuncFor(cfg.DefaultDistance); err != nil {
		return nil, fmt.Errorf("unable provide distance function: %w", err)
	}
	opts := []registry.Option{
		registry.WithDefaultK(cfg.DefaultK),
		registry.WithDefaultDistance(cfg.DefaultDistance),
		registry.WithCache(c),
	}
	if cfg.MaxConcurrency > 0 {
		opts = append(opts, registry.WithMaxConcurrency(cfg.MaxConcurrency))
	}
	return func() (*registry.Registry, error) {
		return registry.New(store, opts...), nil
	}, nil
}

func closeDB(ctx context.Context, db *database.DB) {
	if db == nil {
		return
	}
	if err := db.Close(ctx); err != nil {
		logging.FromContext(ctx).Errorf("closing db after failed setup: %v", err)
	}
}
