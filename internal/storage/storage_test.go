package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pocket-pos/internal/config"
	"pocket-pos/internal/database"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// exerciseSlot checks the contract every backend must honor
func exerciseSlot(t *testing.T, slot Slot) {
	t.Helper()
	ctx := context.Background()

	_, err := slot.Get(ctx, "products")
	require.ErrorIs(t, err, ErrSlotEmpty)

	require.NoError(t, slot.Put(ctx, "products", []byte(`[{"id":"a"}]`)))
	value, err := slot.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(value))

	// whole payload is replaced, never merged
	require.NoError(t, slot.Put(ctx, "products", []byte(`[]`)))
	value, err = slot.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(value))

	// keys are independent
	_, err = slot.Get(ctx, "sales")
	require.ErrorIs(t, err, ErrSlotEmpty)

	// returned bytes are owned by the caller
	value[0] = 'X'
	again, err := slot.Get(ctx, "products")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(again))
}

func TestMemorySlot(t *testing.T) {
	slot := NewMemorySlot()
	defer slot.Close()

	exerciseSlot(t, slot)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, slot.Put(ctx, "products", nil), context.Canceled)
}

func TestBoltSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pos.db")

	slot, err := NewBoltSlot(path, "storage")
	require.NoError(t, err)
	exerciseSlot(t, slot)
	require.NoError(t, slot.Put(context.Background(), "products", []byte(`[{"id":"persisted"}]`)))
	require.NoError(t, slot.Close())

	reopened, err := NewBoltSlot(path, "storage")
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get(context.Background(), "products")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"persisted"}]`, string(value))
}

func TestRedisSlot(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	slot := NewRedisSlot(client)
	defer slot.Close()

	exerciseSlot(t, slot)

	server.SetError("READONLY You can't write against a read only replica.")
	err := slot.Put(context.Background(), "products", []byte(`[]`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotEmpty)
}

func TestPostgresSlot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:15",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("could not teardown postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := database.Open(dsn)
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db, zap.NewNop()))

	slot := NewPostgresSlot(db)
	defer slot.Close()

	exerciseSlot(t, slot)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	t.Run("memory", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Driver: "memory"}}
		slot, err := Open(ctx, cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &MemorySlot{}, slot)
	})

	t.Run("bolt", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{
			Driver:     "bolt",
			BoltPath:   filepath.Join(t.TempDir(), "pos.db"),
			BoltBucket: "storage",
		}}
		slot, err := Open(ctx, cfg, logger)
		require.NoError(t, err)
		defer slot.Close()
		assert.IsType(t, &BoltSlot{}, slot)
	})

	t.Run("redis", func(t *testing.T) {
		server := miniredis.RunT(t)
		cfg := &config.Config{
			Storage: config.StorageConfig{Driver: "redis"},
			Redis:   config.RedisConfig{Host: server.Host(), Port: server.Port()},
		}
		slot, err := Open(ctx, cfg, logger)
		require.NoError(t, err)
		defer slot.Close()
		assert.IsType(t, &RedisSlot{}, slot)
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Driver: "floppy"}}
		_, err := Open(ctx, cfg, logger)
		assert.Error(t, err)
	})
}
