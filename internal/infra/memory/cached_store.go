package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Backend is the durable store a CachedStore fronts (e.g. Redis or Postgres).
type Backend interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CachedStore caches reads from a remote backend with TTL to avoid a round
// trip per repository call. Writes go to the backend first and only touch the
// cache once they succeed.
type CachedStore struct {
	backend Backend
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedValue
}

type cachedValue struct {
	value     string
	present   bool
	expiresAt time.Time
}

type readResult struct {
	value   string
	present bool
}

func NewCachedStore(backend Backend, ttl time.Duration) *CachedStore {
	return &CachedStore{
		backend: backend,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:   make(map[string]cachedValue),
	}
}

func (s *CachedStore) Read(ctx context.Context, key string) (string, bool, error) {
	if entry, ok := s.lookup(key); ok {
		return entry.value, entry.present, nil
	}

	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if entry, ok := s.lookup(key); ok {
			return readResult{value: entry.value, present: entry.present}, nil
		}

		value, present, err := s.backend.Read(ctx, key)
		if err != nil {
			return readResult{}, err
		}
		s.remember(key, value, present)
		return readResult{value: value, present: present}, nil
	})
	if err != nil {
		return "", false, err
	}
	res := result.(readResult)
	return res.value, res.present, nil
}

func (s *CachedStore) Write(ctx context.Context, key, value string) error {
	if err := s.backend.Write(ctx, key, value); err != nil {
		s.forget(key)
		return err
	}
	s.remember(key, value, true)
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, key string) error {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.forget(key)
		return err
	}
	s.remember(key, "", false)
	return nil
}

func (s *CachedStore) lookup(key string) (cachedValue, bool) {
	now := s.clock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return cachedValue{}, false
	}
	return entry, true
}

func (s *CachedStore) remember(key, value string, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = cachedValue{
		value:     value,
		present:   present,
		expiresAt: s.clock().Add(s.ttlWithJitter()),
	}
}

func (s *CachedStore) forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, key)
}

// ttlWithJitter is called with mu held, which also guards rnd.
func (s *CachedStore) ttlWithJitter() time.Duration {
	if s.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(s.ttl) / 10
	return s.ttl + time.Duration(s.rnd.Int63n(jitterMax+1))
}
