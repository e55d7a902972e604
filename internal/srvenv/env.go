package srvenv

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-sod/knn/internal/cache"
	"github.com/go-sod/knn/internal/database"
	"github.com/go-sod/knn/internal/registry"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{cache: cache.Noop{}}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database       *database.DB
	cache          cache.Cache
	registry       registry.ProvideFn
	metricsHandler http.Handler
}

func (s *SrvEnv) ProvideRegistry() registry.ProvideFn {
	return s.registry
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func (s *SrvEnv) Cache() cache.Cache {
	return s.cache
}

func (s *SrvEnv) MetricsHandler() http.Handler {
	return s.metricsHandler
}

func WithRegistry(fn registry.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.registry = fn
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func WithCache(c cache.Cache) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.cache = c
		return s
	}
}

func WithMetricsHandler(h http.Handler) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.metricsHandler = h
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if closer, ok := s.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("closing cache: %w", err)
		}
	}
	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
