package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()

	t.Run("marks a key once", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(time.Hour)
		defer store.Close()

		isNew, err := store.MarkProcessed(ctx, "confirm:po-1:key-a", time.Hour)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "confirm:po-1:key-a", time.Hour)
		require.NoError(t, err)
		assert.False(t, isNew)

		processed, err := store.IsProcessed(ctx, "confirm:po-1:key-a")
		require.NoError(t, err)
		assert.True(t, processed)
	})

	t.Run("expired marks can be taken again", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(time.Hour)
		defer store.Close()

		now := time.Now()
		store.now = func() time.Time { return now }
		_, _ = store.MarkProcessed(ctx, "evt-1", time.Minute)

		store.now = func() time.Time { return now.Add(2 * time.Minute) }
		processed, _ := store.IsProcessed(ctx, "evt-1")
		assert.False(t, processed)

		isNew, err := store.MarkProcessed(ctx, "evt-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	})

	t.Run("release allows retry", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(time.Hour)
		defer store.Close()

		_, _ = store.MarkProcessed(ctx, "evt-2", time.Hour)
		require.NoError(t, store.Release(ctx, "evt-2"))

		isNew, _ := store.MarkProcessed(ctx, "evt-2", time.Hour)
		assert.True(t, isNew)
	})

	t.Run("cleanup evicts expired keys", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(time.Hour)
		defer store.Close()

		now := time.Now()
		store.now = func() time.Time { return now }
		_, _ = store.MarkProcessed(ctx, "short", time.Second)
		_, _ = store.MarkProcessed(ctx, "long", time.Hour)

		store.now = func() time.Time { return now.Add(time.Minute) }
		store.cleanup()
		assert.Equal(t, 1, store.Size())
	})

	t.Run("one winner under concurrency", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(time.Hour)
		defer store.Close()

		var winners int32
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, _ := store.MarkProcessed(ctx, "race", time.Hour); ok {
					atomic.AddInt32(&winners, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), winners)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewInMemoryIdempotencyStore(time.Millisecond)
		assert.NoError(t, store.Close())
		assert.NoError(t, store.Close())
	})
}

func TestNewIdempotencyStore_FallsBackToMemory(t *testing.T) {
	store := NewIdempotencyStore(nil, "event:", zap.NewNop())
	defer store.Close()

	_, ok := store.(*InMemoryIdempotencyStore)
	assert.True(t, ok)

	for i := 0; i < 3; i++ {
		isNew, err := store.MarkProcessed(context.Background(), fmt.Sprintf("k%d", i), time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)
	}
}
