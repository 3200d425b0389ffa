package oauth2

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gscgateway/pkg/cache"
)

var (
	ErrStateNotFound = errors.New("state not found")
	ErrStateExpired  = errors.New("state expired")
)

// StateStorage keeps the anti-CSRF state values issued with authorization
// URLs. A state can be consumed exactly once.
type StateStorage interface {
	SaveState(ctx context.Context, state string, expiresAt time.Time) error
	ConsumeState(ctx context.Context, state string) error
	Cleanup()
}

// InMemoryStorage implements StateStorage for a single process.
type InMemoryStorage struct {
	mu   sync.Mutex
	data map[string]time.Time
	done chan struct{}
	once sync.Once
	now  func() time.Time
}

func NewInMemoryStorage() *InMemoryStorage {
	s := &InMemoryStorage{
		data: make(map[string]time.Time),
		done: make(chan struct{}),
		now:  time.Now,
	}
	go s.cleanupRoutine()
	return s
}

func (s *InMemoryStorage) SaveState(_ context.Context, state string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[state] = expiresAt
	return nil
}

func (s *InMemoryStorage) ConsumeState(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, exists := s.data[state]
	if !exists {
		return ErrStateNotFound
	}
	delete(s.data, state)

	if s.now().After(expiresAt) {
		return ErrStateExpired
	}
	return nil
}

func (s *InMemoryStorage) Cleanup() {
	s.once.Do(func() {
		close(s.done)
	})
}

func (s *InMemoryStorage) cleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.done:
			return
		}
	}
}

func (s *InMemoryStorage) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for state, expiresAt := range s.data {
		if now.After(expiresAt) {
			delete(s.data, state)
		}
	}
}

const statePrefix = "oauth2:state:"

// RedisStorage implements StateStorage on top of the shared cache so that
// several replicas can serve the login and callback legs of one flow.
type RedisStorage struct {
	cache cache.Cache
	now   func() time.Time
}

func NewRedisStorage(c cache.Cache) *RedisStorage {
	return &RedisStorage{cache: c, now: time.Now}
}

func (s *RedisStorage) SaveState(ctx context.Context, state string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrStateExpired
	}

	ok, err := s.cache.SetNX(ctx, statePrefix+state, expiresAt.UTC().Format(time.RFC3339Nano), ttl)
	if err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	if !ok {
		return fmt.Errorf("save state: state already issued")
	}
	return nil
}

func (s *RedisStorage) ConsumeState(ctx context.Context, state string) error {
	val, err := s.cache.GetDel(ctx, statePrefix+state)
	if errors.Is(err, cache.ErrMiss) {
		return ErrStateNotFound
	}
	if err != nil {
		return fmt.Errorf("consume state: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, val)
	if err != nil || s.now().After(expiresAt) {
		return ErrStateExpired
	}
	return nil
}

// Cleanup is a no-op; redis expires keys on its own and the cache is closed
// by its owner.
func (s *RedisStorage) Cleanup() {}
