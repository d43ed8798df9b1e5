package commands

import (
	"context"
	"fmt"

	"github.com/taskflow/core/internal/adapters/repository"
	"github.com/taskflow/core/internal/adapters/repository/cached"
	"github.com/taskflow/core/internal/adapters/repository/fixtures"
	"github.com/taskflow/core/internal/adapters/repository/memory"
	"github.com/taskflow/core/internal/application/services"
	"github.com/taskflow/core/internal/infrastructure/cache"
	"github.com/taskflow/core/internal/infrastructure/config"
	"github.com/taskflow/core/internal/infrastructure/database"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/ports"
)

// Runtime holds the records stores chosen by configuration. Call sites only
// see the port interfaces.
type Runtime struct {
	Config *config.Config
	Logger *logger.Logger

	DB    *database.DB
	Cache *cache.RedisCache

	Tasks     ports.TaskRepository
	Contacts  ports.ContactRepository
	Discounts ports.DiscountRepository

	// Checks are the dependencies /ready pings
	Checks map[string]ports.Pinger
}

// Bootstrap builds the configured records store. The SQL backend is
// migrated to the latest schema; the memory backend is seeded from fixtures.
// degraded may be nil.
func Bootstrap(ctx context.Context, cfg *config.Config, log *logger.Logger, degraded ports.DegradedReadObserver) (*Runtime, error) {
	rt := &Runtime{
		Config: cfg,
		Logger: log,
		Checks: map[string]ports.Pinger{},
	}

	switch cfg.Store.Backend {
	case config.BackendSQL:
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.MigrateUp(db); err != nil {
			db.Close()
			return nil, err
		}
		rt.DB = db
		rt.Checks["database"] = db
		log.Debugw("Database connected", "pool", db.GetConnectionInfo())
		var opts []repository.Option
		if degraded != nil {
			opts = append(opts, repository.WithDegradedReadObserver(degraded))
		}
		rt.Tasks = repository.NewTaskRepository(db, log, opts...)
		rt.Contacts = repository.NewContactRepository(db, log, opts...)
		rt.Discounts = repository.NewDiscountRepository(db, log, opts...)

	default:
		set, err := fixtures.Load(cfg.Store.Fixtures)
		if err != nil {
			return nil, err
		}
		latency := memory.WithLatency(memory.Latency{Min: cfg.Store.LatencyMin, Max: cfg.Store.LatencyMax})
		rt.Tasks = memory.NewTaskRepository(set.Tasks, latency)
		rt.Contacts = memory.NewContactRepository(set.Contacts, latency)
		rt.Discounts = memory.NewDiscountRepository(set.Discounts, latency)
	}

	log.Infow("Records store ready", "backend", cfg.Store.Backend)

	if cfg.Redis.Enabled {
		rc, err := cache.Connect(ctx, cfg.Redis, cache.DefaultConnectOptions, log)
		if err != nil {
			log.Warnw("Discount cache disabled", "error", err)
		} else {
			rt.Cache = rc
			rt.Checks["redis"] = rc
			rt.Discounts = cached.NewDiscountRepository(rt.Discounts, rc, cfg.Redis.TTL, log)
			log.Infow("Discount cache enabled", "redis", rc.GetConnectionInfo(), "ttl", cfg.Redis.TTL)
		}
	}

	return rt, nil
}

// Services builds the application services over the runtime's stores.
// observer may be nil.
func (rt *Runtime) Services(observer ports.OperationObserver) (*services.TaskService, *services.ContactService, *services.DiscountService) {
	return services.NewTaskService(rt.Tasks, observer, rt.Logger),
		services.NewContactService(rt.Contacts, observer, rt.Logger),
		services.NewDiscountService(rt.Discounts, observer, rt.Logger)
}

// Close releases the database and cache connections
func (rt *Runtime) Close() error {
	var firstErr error
	if rt.Cache != nil {
		if err := rt.Cache.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close redis: %w", err)
		}
	}
	if rt.DB != nil {
		if err := rt.DB.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close database: %w", err)
		}
	}
	return firstErr
}
