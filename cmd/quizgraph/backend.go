package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/quizgraph/internal/config"
	"github.com/aretw0/quizgraph/internal/metrics"
	"github.com/aretw0/quizgraph/pkg/adapters/file"
	"github.com/aretw0/quizgraph/pkg/adapters/memory"
	"github.com/aretw0/quizgraph/pkg/adapters/mqtt"
	"github.com/aretw0/quizgraph/pkg/adapters/postgres"
	"github.com/aretw0/quizgraph/pkg/adapters/redis"
	"github.com/aretw0/quizgraph/pkg/editor"
	"github.com/aretw0/quizgraph/pkg/persistence/middleware"
	"github.com/aretw0/quizgraph/pkg/ports"
	"github.com/aretw0/quizgraph/pkg/session"
)

// backend is the wiring shared by serve and mcp.
type backend struct {
	store   ports.QuizStore
	locker  ports.DistributedLocker
	events  *memory.Broadcaster
	closers []func() error
}

func (b *backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// openBackend builds the store selected by cfg, wraps it with encryption when
// a key is configured and connects the optional MQTT notifier.
func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	b := &backend{events: memory.NewBroadcaster(0)}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		b.store = memory.NewStore()
	case config.BackendFile:
		b.store = file.New(cfg.Store.Dir)
	case config.BackendRedis:
		var opts []redis.Option
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Store.Redis.Prefix))
		}
		if cfg.Store.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Store.Redis.TTL))
		}
		rs := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB, opts...)
		b.store = rs
		b.locker = redis.NewLocker(rs.Client(), cfg.Store.Redis.Prefix)
		b.closers = append(b.closers, rs.Close)
	case config.BackendPostgres:
		ps, err := postgres.Open(ctx, cfg.Store.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		b.store = ps
		b.closers = append(b.closers, ps.Close)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	key, err := cfg.Key()
	if err != nil {
		b.Close()
		return nil, err
	}
	if key != nil {
		b.store = middleware.Chain(b.store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:      key,
			AllowPlaintext: true,
		}))
	}
	logger.Info("Store ready", "backend", cfg.Store.Backend, "encrypted", key != nil)
	return b, nil
}

// notifier returns the broadcaster, fanned out to MQTT when a broker is configured.
func (b *backend) notifier(cfg *config.Config, logger *slog.Logger) (ports.ChangeNotifier, error) {
	if cfg.Notify.MQTT.URL == "" {
		return b.events, nil
	}
	n, disconnect, err := mqtt.Dial(cfg.Notify.MQTT.URL, cfg.Notify.MQTT.ClientID, cfg.Notify.MQTT.Topic)
	if err != nil {
		return nil, fmt.Errorf("connect mqtt: %w", err)
	}
	b.closers = append(b.closers, func() error {
		disconnect()
		return nil
	})
	logger.Info("Publishing change events", "broker", cfg.Notify.MQTT.URL, "topic", cfg.Notify.MQTT.Topic)
	return ports.Fanout(b.events, n), nil
}

// sessions builds the session manager over the backend.
func (b *backend) sessions(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*session.Manager, error) {
	notifier, err := b.notifier(cfg, logger)
	if err != nil {
		return nil, err
	}
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithEditorOptions(
			editor.WithNotifier(notifier),
			editor.WithHooks(m.Hooks()),
			editor.WithSocketDelay(cfg.Sockets.RecomputeDelay),
		),
	}
	if b.locker != nil {
		opts = append(opts, session.WithLocker(b.locker))
	}
	return session.NewManager(b.store, opts...), nil
}
