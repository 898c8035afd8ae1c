// Package storage provides named byte slots: each key holds one opaque payload
// that is always read and written as a whole.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net"

	"pocket-pos/internal/config"
	"pocket-pos/internal/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrSlotEmpty is returned by Get when nothing was ever written under the key
var ErrSlotEmpty = errors.New("storage slot is empty")

// Slot reads and replaces whole payloads stored under a key
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open creates the slot backend selected by cfg.Storage.Driver
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Slot, error) {
	switch cfg.Storage.Driver {
	case "", "bolt":
		logger.Info("Opening bolt storage", zap.String("path", cfg.Storage.BoltPath))
		return NewBoltSlot(cfg.Storage.BoltPath, cfg.Storage.BoltBucket)

	case "postgres":
		db, err := database.New(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(db, logger); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Using postgres storage",
			zap.String("host", cfg.Database.Host),
			zap.Any("health", database.Health(db)),
		)
		return NewPostgresSlot(db), nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to reach redis: %w", err)
		}
		logger.Info("Using redis storage", zap.String("addr", client.Options().Addr))
		return NewRedisSlot(client), nil

	case "memory":
		logger.Warn("Using in-memory storage, data is lost on exit")
		return NewMemorySlot(), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
