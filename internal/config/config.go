package config

import (
	"github.com/go-sod/knn/internal/cache"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/fit"
	"github.com/go-sod/knn/internal/metrics"
	"github.com/go-sod/knn/internal/predict"
	"github.com/go-sod/knn/internal/registry"
	"github.com/go-sod/knn/internal/setup"
)

var (
	_ setup.DatabaseConfigProvider = (*Config)(nil)
	_ setup.CacheConfigProvider    = (*Config)(nil)
	_ setup.RegistryConfigProvider = (*Config)(nil)
	_ setup.MetricsConfigProvider  = (*Config)(nil)
)

type Config struct {
	SrvAddr   string `envconfig:"KNN_ADDR" default:":8787"`
	GRPCAddr  string `envconfig:"KNN_GRPC_ADDR" default:":8788"`
	MaxConns  int    `envconfig:"KNN_MAX_CONNS" default:"1024"`
	AuthToken string `envconfig:"KNN_AUTH_TOKEN"`
	Fit       fit.Config
	Predict   predict.Config
	Registry  registry.Config
	Database  database.Config
	Cache     cache.Config
	Metrics   metrics.Config
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) CacheConfig() *cache.Config {
	return &c.Cache
}

func (c *Config) RegistryConfig() *registry.Config {
	return &c.Registry
}

func (c *Config) MetricsConfig() *metrics.Config {
	return &c.Metrics
}
