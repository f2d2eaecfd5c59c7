// Package cache stores computed payments so repeated requests for the same
// inputs skip the calculation.
package cache

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/reverse-mortgage/internal/config"
	"github.com/iwvelando/reverse-mortgage/pkg/constants"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
	"go.uber.org/zap"
)

// Cache is a string key/value store with backend-defined expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// New builds the cache selected by cfg.Backend.
func New(logger *zap.Logger, cfg config.CacheConfig) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", constants.CacheBackendNone:
		return Nop{}, nil
	case constants.CacheBackendMemory:
		logger.Info("using in-memory payment cache",
			zap.String("op", "cache.New"),
			zap.Duration("ttl", cfg.TTL),
		)
		return NewMemory(cfg.TTL), nil
	case constants.CacheBackendRedis:
		logger.Info("using redis payment cache",
			zap.String("op", "cache.New"),
			zap.String("address", cfg.RedisAddress),
			zap.Duration("ttl", cfg.TTL),
		)
		return NewRedis(RedisOptions{
			Address:   cfg.RedisAddress,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
			TTL:       cfg.TTL,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// Key derives the cache key for a set of inputs.
func Key(in mortgage.Inputs) string {
	return "payment:" + strconv.FormatUint(xxhash.Sum64String(in.CacheKey()), 16)
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error) { return "", false, nil }

func (Nop) Set(context.Context, string, string) error { return nil }

func (Nop) Close() error { return nil }
