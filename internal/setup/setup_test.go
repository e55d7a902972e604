package setup

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/go-sod/knn/internal/cache"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/dataset"
	"github.com/go-sod/knn/internal/geom"
	"github.com/go-sod/knn/internal/registry"
)

type testConfig struct {
	Database database.Config
	Cache    cache.Config
	Registry registry.Config
}

func (c *testConfig) DatabaseConfig() *database.Config { return &c.Database }

func (c *testConfig) CacheConfig() *cache.Config { return &c.Cache }

func (c *testConfig) RegistryConfig() *registry.Config { return &c.Registry }

func TestSetup(t *testing.T) {
	ctx := context.Background()
	t.Setenv("KNN_DB_FILE", filepath.Join(t.TempDir(), "knn.db"))
	t.Setenv("KNN_DEFAULT_K", "1")
	t.Setenv("KNN_REDIS_ADDR", "")

	var cfg testConfig
	env, err := Setup(ctx, &cfg)
	if err != nil {
		t.Fatalf("unable to setup: %v", err)
	}
	defer env.Close(ctx)

	if cfg.Registry.DefaultK != 1 || cfg.Registry.DefaultDistance != geom.DistanceFuncTypeEuclidean {
		t.Errorf("registry config got: %+v", cfg.Registry)
	}
	if env.Database() == nil {
		t.Fatalf("database must be configured")
	}
	if _, ok := env.Cache().(cache.Noop); !ok {
		t.Errorf("cache without redis address got: %T, expected: cache.Noop", env.Cache())
	}

	reg, err := env.ProvideRegistry()()
	if err != nil {
		t.Fatalf("unable to provide registry: %v", err)
	}
	info, err := reg.Fit(ctx, "line", 0, "", dataset.FromClasses(
		dataset.Class{Label: "low", Points: []geom.Point{{0}}},
		dataset.Class{Label: "high", Points: []geom.Point{{10}}},
	))
	if err != nil {
		t.Fatalf("unable to fit: %v", err)
	}
	if info.K != 1 {
		t.Errorf("default k from env got: %d, expected: 1", info.K)
	}
}

func TestProvideRegistryFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     registry.Config
		wantErr bool
	}{
		{name: "positive", cfg: registry.Config{DefaultK: 3, DefaultDistance: geom.DistanceFuncTypeChebyshev}},
		{name: "zero_k", cfg: registry.Config{DefaultK: 0}, wantErr: true},
		{name: "unknown_distance", cfg: registry.Config{DefaultK: 3, DefaultDistance: "COSINE"}, wantErr: true},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			fn, err := ProvideRegistryFor(&test.cfg, nil, cache.Noop{})
			if test.wantErr {
				if err == nil {
					t.Errorf("expected an error for %+v", test.cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reg, err := fn(); err != nil || reg == nil {
				t.Errorf("provide function got: %v, %v", reg, err)
			}
		})
	}
}
