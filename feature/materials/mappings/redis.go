package mappings

import (
	"context"
	"errors"
	"time"

	"material-reconciler/core/reconcile"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStore is a read-through, write-through Redis cache in front of a
// durable store. Cache failures are logged and never fail the call.
type CachedStore struct {
	inner  reconcile.MappingStore
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps inner. A zero ttl keeps entries until overwritten.
func NewCachedStore(inner reconcile.MappingStore, client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{inner: inner, client: client, prefix: prefix, ttl: ttl, logger: logger}
}

func (s *CachedStore) cacheKey(name, category string) string {
	return s.prefix + name + "|" + category
}

// Lookup implements reconcile.MappingStore.
func (s *CachedStore) Lookup(ctx context.Context, key reconcile.Key) (*reconcile.MaterialMapping, error) {
	ck := s.cacheKey(key.StoreName(), key.Category)

	data, err := s.client.Get(ctx, ck).Bytes()
	switch {
	case err == nil:
		var m reconcile.MaterialMapping
		if jsonErr := json.Unmarshal(data, &m); jsonErr == nil {
			return &m, nil
		}
		s.logger.Warn("Dropping corrupt cached mapping", zap.String("key", ck))
		s.client.Del(ctx, ck)
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("Mapping cache read failed", zap.String("key", ck), zap.Error(err))
	}

	m, err := s.inner.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	s.put(ctx, *m)
	return m, nil
}

// Upsert implements reconcile.MappingStore. The cache is refreshed only after
// the durable write succeeded.
func (s *CachedStore) Upsert(ctx context.Context, m reconcile.MaterialMapping) (*reconcile.MaterialMapping, error) {
	stored, err := s.inner.Upsert(ctx, m)
	if err != nil {
		// The durable row may or may not have changed; drop the cached copy.
		s.client.Del(ctx, s.cacheKey(m.CalculatorName, m.CalculatorCategory))
		return nil, err
	}
	s.put(ctx, *stored)
	return stored, nil
}

// List implements reconcile.MappingLister when the inner store does.
func (s *CachedStore) List(ctx context.Context) ([]reconcile.MaterialMapping, error) {
	lister, ok := s.inner.(reconcile.MappingLister)
	if !ok {
		return nil, errors.New("underlying mapping store cannot list")
	}
	return lister.List(ctx)
}

func (s *CachedStore) put(ctx context.Context, m reconcile.MaterialMapping) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}
	ck := s.cacheKey(m.CalculatorName, m.CalculatorCategory)
	if err := s.client.Set(ctx, ck, data, s.ttl).Err(); err != nil {
		s.logger.Warn("Mapping cache write failed", zap.String("key", ck), zap.Error(err))
	}
}
