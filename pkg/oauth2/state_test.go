package oauth2

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gscgateway/pkg/cache"
)

func TestNewInMemoryStorage(t *testing.T) {
	storage := NewInMemoryStorage()
	require.NotNil(t, storage)
	assert.NotNil(t, storage.data)
	assert.NotNil(t, storage.done)

	storage.Cleanup()
}

func TestInMemoryStorage_ConsumeState(t *testing.T) {
	ctx := context.Background()
	storage := NewInMemoryStorage()
	defer storage.Cleanup()

	err := storage.SaveState(ctx, "test-state", time.Now().Add(5*time.Minute))
	require.NoError(t, err)

	require.NoError(t, storage.ConsumeState(ctx, "test-state"))

	// single use
	err = storage.ConsumeState(ctx, "test-state")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestInMemoryStorage_ConsumeState_NotFound(t *testing.T) {
	storage := NewInMemoryStorage()
	defer storage.Cleanup()

	err := storage.ConsumeState(context.Background(), "nonexistent-state")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestInMemoryStorage_ConsumeState_Expired(t *testing.T) {
	ctx := context.Background()
	storage := NewInMemoryStorage()
	defer storage.Cleanup()

	err := storage.SaveState(ctx, "expired-state", time.Now().Add(-1*time.Second))
	require.NoError(t, err)

	err = storage.ConsumeState(ctx, "expired-state")
	assert.ErrorIs(t, err, ErrStateExpired)

	// Expired states are removed on first sight
	err = storage.ConsumeState(ctx, "expired-state")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestInMemoryStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := NewInMemoryStorage()
	defer storage.Cleanup()

	var wg sync.WaitGroup
	numGoroutines := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			err := storage.SaveState(ctx, fmt.Sprintf("state-%d", idx), time.Now().Add(5*time.Minute))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// Each state is consumed exactly once even when raced
	var mu sync.Mutex
	consumed := 0
	wg.Add(numGoroutines * 2)
	for i := 0; i < numGoroutines*2; i++ {
		go func(idx int) {
			defer wg.Done()
			if storage.ConsumeState(ctx, fmt.Sprintf("state-%d", idx%numGoroutines)) == nil {
				mu.Lock()
				consumed++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines, consumed)
}

func TestInMemoryStorage_RemoveExpired(t *testing.T) {
	ctx := context.Background()
	storage := NewInMemoryStorage()
	defer storage.Cleanup()

	for i := 0; i < 5; i++ {
		require.NoError(t, storage.SaveState(ctx, fmt.Sprintf("expired-%d", i), time.Now().Add(-time.Second)))
		require.NoError(t, storage.SaveState(ctx, fmt.Sprintf("valid-%d", i), time.Now().Add(5*time.Minute)))
	}

	storage.removeExpired()

	storage.mu.Lock()
	assert.Len(t, storage.data, 5)
	storage.mu.Unlock()

	assert.NoError(t, storage.ConsumeState(ctx, "valid-0"))
}

func TestInMemoryStorage_CleanupIdempotent(t *testing.T) {
	storage := NewInMemoryStorage()
	assert.NotPanics(t, func() {
		storage.Cleanup()
		storage.Cleanup()
	})
}

func newRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewRedisCache(mr.Addr(), "")
	t.Cleanup(func() { _ = c.Close() })
	return NewRedisStorage(c), mr
}

func TestRedisStorage_SaveAndConsume(t *testing.T) {
	ctx := context.Background()
	storage, mr := newRedisStorage(t)

	require.NoError(t, storage.SaveState(ctx, "abc", time.Now().Add(time.Minute)))
	assert.True(t, mr.Exists(statePrefix+"abc"))

	require.NoError(t, storage.ConsumeState(ctx, "abc"))
	assert.False(t, mr.Exists(statePrefix+"abc"))

	assert.ErrorIs(t, storage.ConsumeState(ctx, "abc"), ErrStateNotFound)
}

func TestRedisStorage_SaveState_AlreadyIssued(t *testing.T) {
	ctx := context.Background()
	storage, _ := newRedisStorage(t)

	require.NoError(t, storage.SaveState(ctx, "dup", time.Now().Add(time.Minute)))
	err := storage.SaveState(ctx, "dup", time.Now().Add(time.Minute))
	assert.Error(t, err)
}

func TestRedisStorage_SaveState_PastExpiry(t *testing.T) {
	storage, _ := newRedisStorage(t)

	err := storage.SaveState(context.Background(), "late", time.Now().Add(-time.Second))
	assert.ErrorIs(t, err, ErrStateExpired)
}

func TestRedisStorage_ConsumeState_TTLElapsed(t *testing.T) {
	ctx := context.Background()
	storage, mr := newRedisStorage(t)

	require.NoError(t, storage.SaveState(ctx, "short", time.Now().Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	assert.ErrorIs(t, storage.ConsumeState(ctx, "short"), ErrStateNotFound)
}

func TestRedisStorage_ConsumeState_ClockPastExpiry(t *testing.T) {
	ctx := context.Background()
	storage, _ := newRedisStorage(t)

	require.NoError(t, storage.SaveState(ctx, "skewed", time.Now().Add(time.Minute)))
	storage.now = func() time.Time { return time.Now().Add(time.Hour) }

	assert.ErrorIs(t, storage.ConsumeState(ctx, "skewed"), ErrStateExpired)
}
