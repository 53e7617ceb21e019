package storage

import (
	"context"
	"fmt"

	"github.com/fasion-image-generator-project/FashionFusion/internal/infra"
)

// Open builds the KV selected by STORE_DRIVER. The returned close func
// releases any connection the backend holds and is never nil.
func Open(ctx context.Context, cfg *infra.Config, logger *infra.Logger) (KV, func(), error) {
	logger = infra.OrDiscard(logger)
	noop := func() {}
	switch cfg.StoreDriver {
	case infra.StoreDriverMemory:
		logger.Info().Msg("using in-memory store")
		return NewMemoryStore(), noop, nil
	case infra.StoreDriverRedis:
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("storage: %w", err)
		}
		logger.Info().Msg("using redis store")
		return NewRedisStore(client, DefaultRedisPrefix), func() { _ = client.Close() }, nil
	case infra.StoreDriverPostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, noop, fmt.Errorf("storage: %w", err)
		}
		store := NewPostgresStore(infra.NewSQLRunner(pool, *logger), DefaultNamespace)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		logger.Info().Msg("using postgres store")
		return store, pool.Close, nil
	case infra.StoreDriverFile, "":
		store, err := NewFileStore(cfg.StorePath)
		if err != nil {
			return nil, noop, err
		}
		logger.Info().Str("path", store.BasePath()).Msg("using file store")
		return store, noop, nil
	default:
		return nil, noop, fmt.Errorf("storage: unsupported driver %q", cfg.StoreDriver)
	}
}
