package repository

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"pocket-pos/internal/storage"

	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// collection is a JSON array of T kept whole under one slot key.
// The mutex serializes read-modify-write cycles issued through this value;
// writers in other processes still race with last-write-wins.
type collection[T any] struct {
	slot storage.Slot
	key  string
	mu   sync.Mutex
}

func (c *collection[T]) load(ctx context.Context) ([]T, error) {
	raw, err := c.slot.Get(ctx, c.key)
	if err != nil {
		if errors.Is(err, storage.ErrSlotEmpty) {
			return []T{}, nil
		}
		return nil, &StorageReadError{Key: c.key, Err: err}
	}

	items := []T{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return items, nil
	}
	if err := codec.Unmarshal(raw, &items); err != nil {
		return nil, &StorageReadError{Key: c.key, Err: err}
	}
	if items == nil {
		// stored payload was null
		items = []T{}
	}
	return items, nil
}

func (c *collection[T]) save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}

	raw, err := codec.Marshal(items)
	if err != nil {
		return &StorageWriteError{Key: c.key, Err: err}
	}
	if err := c.slot.Put(ctx, c.key, raw); err != nil {
		return &StorageWriteError{Key: c.key, Err: err}
	}
	return nil
}

// errUnchanged lets a mutation abort without writing and without reporting failure
var errUnchanged = errors.New("collection unchanged")

func (c *collection[T]) mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.load(ctx)
	if err != nil {
		return err
	}

	updated, err := fn(items)
	if err != nil {
		if errors.Is(err, errUnchanged) {
			return nil
		}
		return err
	}

	return c.save(ctx, updated)
}
