// Package cache keeps predicted labels keyed by model revision and query.
package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davecgh/go-xdr/xdr2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/go-sod/knn/internal/geom"
)

const keyPrefix = "knn:"

type Config struct {
	RedisAddr     string        `envconfig:"KNN_REDIS_ADDR"`
	RedisPassword string        `envconfig:"KNN_REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"KNN_REDIS_DB" default:"0"`
	TTL           time.Duration `envconfig:"KNN_CACHE_TTL" default:"10m"`
}

// Cache stores labels. A miss is reported with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (label string, ok bool, err error)
	Set(ctx context.Context, key string, label string) error
}

var keyBuffers = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

type cacheKey struct {
	Revision [16]byte
	Query    []float64
}

// Key derives the cache key from a model revision and the XDR encoding of the
// query, so a refit never hits labels predicted by an older revision.
func Key(revision uuid.UUID, query geom.Point) (string, error) {
	buf := keyBuffers.Get().(*bytes.Buffer)
	defer keyBuffers.Put(buf)
	defer buf.Reset()
	if _, err := xdr.Marshal(buf, cacheKey{Revision: revision, Query: query}); err != nil {
		return "", fmt.Errorf("xdr marshal cache key: %w", err)
	}
	sum := sha256.Sum256(buf.Bytes())
	return keyPrefix + hex.EncodeToString(sum[:]), nil
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	label, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return label, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, label string) error {
	if err := r.client.Set(ctx, key, label, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (Noop) Set(context.Context, string, string) error { return nil }

// NewFromConfig connects to Redis when an address is configured and falls back to Noop.
func NewFromConfig(ctx context.Context, cfg *Config) (Cache, error) {
	if cfg.RedisAddr == "" {
		return Noop{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return NewRedis(client, cfg.TTL), nil
}
