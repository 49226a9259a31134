// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, redis, cache, sessions)
// that domain systems and modules require.
package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/agent-meet/internal/config"
	"github.com/JaimeStill/agent-meet/internal/events"
	"github.com/JaimeStill/agent-meet/internal/session"
	"github.com/JaimeStill/agent-meet/pkg/cache"
	"github.com/JaimeStill/agent-meet/pkg/database"
	"github.com/JaimeStill/agent-meet/pkg/lifecycle"
	"github.com/JaimeStill/agent-meet/pkg/logging"
	"github.com/JaimeStill/agent-meet/pkg/redisdb"
)

// Infrastructure holds the core systems shared by the API and app modules.
// Redis is nil when no redis address is configured; the cache and session
// stores then live in process memory.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Redis     redisdb.System
	Cache     cache.Provider
	Sessions  session.System
	Events    *events.Hub
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
	}

	cacheOpts := cache.Options{StaleTime: cfg.Cache.StaleTimeDuration()}
	var sessionStore session.Store

	if cfg.Redis.Enabled() {
		rdb, err := redisdb.New(&cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("redis init failed: %w", err)
		}
		infra.Redis = rdb
		infra.Cache = cache.NewRedisProvider(rdb.Client(), rdb.Namespace(), cfg.Cache.TTLDuration(), cacheOpts)
		sessionStore = session.NewRedisStore(rdb.Client(), rdb.Namespace())
	} else {
		logger.Warn("redis not configured, using in-memory cache and sessions")
		infra.Cache = cache.NewMemoryProvider(cfg.Cache.TTLDuration(), cacheOpts)
		sessionStore = session.NewMemoryStore()
	}

	infra.Sessions = session.New(&cfg.Session, sessionStore, logger)
	infra.Events = events.NewHub(infra.Sessions, logger)

	infra.Cache.OnInvalidate(infra.Events.Publish)
	infra.Sessions.OnRevoke(func(ctx context.Context, token string) {
		if err := infra.Cache.Drop(ctx, token); err != nil {
			logger.Error("drop session cache failed", "error", err)
		}
	})

	return infra, nil
}

// Start initializes all infrastructure systems and registers them with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if i.Redis != nil {
		if err := i.Redis.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("redis start failed: %w", err)
		}
	}
	i.Cache.Start(i.Lifecycle)
	i.Events.Start(i.Lifecycle)
	return nil
}
