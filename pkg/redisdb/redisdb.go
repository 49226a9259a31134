// Package redisdb supervises a shared go-redis client for the service lifetime.
package redisdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/agent-meet/pkg/lifecycle"
)

// System exposes the redis client and registers it with the lifecycle.
type System interface {
	Client() *redis.Client
	Namespace() string
	Start(lc *lifecycle.Coordinator) error
}

type system struct {
	client *redis.Client
	cfg    *Config
	logger *slog.Logger
}

// New creates the client. Connections are opened lazily by go-redis.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("redis address not configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeoutDuration(),
		PoolSize:    cfg.PoolSize,
	})

	return &system{
		client: client,
		cfg:    cfg,
		logger: logger.With("system", "redis"),
	}, nil
}

func (s *system) Client() *redis.Client {
	return s.client
}

func (s *system) Namespace() string {
	return s.cfg.Namespace
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting redis client", "addr", s.cfg.Addr, "db", s.cfg.DB)

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), s.cfg.DialTimeoutDuration())
		defer cancel()

		if err := s.client.Ping(ctx).Err(); err != nil {
			s.logger.Error("redis ping failed", "error", err)
			return
		}
		s.logger.Info("redis connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := s.client.Close(); err != nil {
			s.logger.Error("redis close failed", "error", err)
			return
		}
		s.logger.Info("redis client closed")
	})

	return nil
}
