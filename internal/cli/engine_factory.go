package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/config"
	"github.com/aretw0/stepflow/pkg/adapters/memory"
	"github.com/aretw0/stepflow/pkg/adapters/redis"
	"github.com/aretw0/stepflow/pkg/observability"
	"github.com/aretw0/stepflow/pkg/persistence/middleware"
	"github.com/aretw0/stepflow/pkg/ports"
	"github.com/aretw0/stepflow/pkg/workflows/summarize"
)

// NewEngine builds an engine from cfg with the built-in workflows registered.
// The returned close func releases the store connection and is never nil.
func NewEngine(ctx context.Context, cfg config.Config, logger *slog.Logger, extra ...stepflow.Option) (*stepflow.Engine, func() error, error) {
	opts := []stepflow.Option{
		stepflow.WithLogger(logger),
		stepflow.WithLifecycleHooks(observability.LoggingHooks(logger)),
		stepflow.WithMaxSteps(cfg.Engine.MaxSteps),
		stepflow.WithStrictGraphs(cfg.Engine.StrictGraphs),
	}

	closeFn := func() error { return nil }

	mws, err := runMiddlewares(cfg.Store)
	if err != nil {
		return nil, closeFn, err
	}

	var graphs ports.GraphStore
	var runs ports.RunStore

	switch cfg.Store.Backend {
	case config.BackendRedis:
		rc := cfg.Store.Redis
		store := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithPrefix(rc.Prefix), redis.WithTTL(rc.TTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, closeFn, fmt.Errorf("connect to redis at %s: %w", rc.Addr, err)
		}
		logger.Debug("Using redis store", "addr", rc.Addr, "db", rc.DB, "prefix", rc.Prefix, "ttl", rc.TTL)
		graphs, runs = store, store
		closeFn = store.Close
	default:
		store := memory.NewStore()
		graphs, runs = store, store
	}

	opts = append(opts,
		stepflow.WithGraphStore(graphs),
		stepflow.WithRunStore(middleware.Chain(runs, mws...)),
	)

	engine := stepflow.New(append(opts, extra...)...)
	summarize.Register(engine.Registry())

	return engine, closeFn, nil
}

// runMiddlewares masks before it encrypts.
func runMiddlewares(sc config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	if len(sc.Redact) > 0 {
		pii, err := middleware.NewPIIMiddleware(sc.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, pii)
	}

	key, err := sc.Key()
	if err != nil {
		return nil, err
	}
	if key != nil {
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return nil, err
		}
		mws = append(mws, enc)
	}
	return mws, nil
}
