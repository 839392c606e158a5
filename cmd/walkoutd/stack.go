package main

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/claritydental/walkout/internal/config"
	loamAdapter "github.com/claritydental/walkout/pkg/adapters/loam"
	"github.com/claritydental/walkout/pkg/adapters/memory"
	redisAdapter "github.com/claritydental/walkout/pkg/adapters/redis"
	"github.com/claritydental/walkout/pkg/adapters/sqlite"
	"github.com/claritydental/walkout/pkg/fields"
	"github.com/claritydental/walkout/pkg/persistence/middleware"
	"github.com/claritydental/walkout/pkg/ports"
)

// stack is the set of backends built from the config file, shared by
// the serve and show commands.
type stack struct {
	store    ports.WalkoutStore
	fields   ports.FieldDefinitionSource
	registry *fields.Registry
	locker   ports.DistributedLocker
	close    func() error
}

func buildStack(ctx context.Context, cfg config.Config) (*stack, error) {
	s := &stack{close: func() error { return nil }}

	switch cfg.Store.Backend {
	case "memory":
		s.store = memory.NewStore()

	case "redis":
		ttl, err := cfg.Store.Redis.ParsedTTL()
		if err != nil {
			return nil, err
		}
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Store.Redis.Address,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		store := redisAdapter.NewFromClient(client, redisAdapter.WithTTL(ttl))
		s.store = store
		s.locker = redisAdapter.NewLocker(client, "walkout:")
		s.close = store.Close

	case "sqlite":
		store, err := sqlite.Open(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		s.store = store
		s.close = store.Close

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var mws []middleware.Middleware
	if cfg.Store.MaskPII {
		mws = append(mws, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	if cfg.Store.EncryptionKey != "" {
		key, err := cfg.DecodedEncryptionKey()
		if err != nil {
			return nil, err
		}
		fallbacks, err := cfg.DecodedFallbackKeys()
		if err != nil {
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    key,
			FallbackKeys: fallbacks,
		}))
	}
	s.store = middleware.Chain(s.store, mws...)

	if cfg.FieldsDir != "" {
		source, err := loamAdapter.Open(cfg.FieldsDir)
		if err != nil {
			return nil, fmt.Errorf("open field definitions: %w", err)
		}
		registry, err := source.Registry(ctx)
		if err != nil {
			return nil, fmt.Errorf("build field registry: %w", err)
		}
		s.fields = source
		s.registry = registry
	} else {
		s.fields = memory.NewFieldDefinitions(fields.DefaultSets()...)
		s.registry = fields.Default()
	}

	return s, nil
}
