package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// CatalogCache holds a normalized catalog index for a TTL.
// Concurrent batches that find the cache stale share a single reload.
type CatalogCache struct {
	catalog Catalog
	ttl     time.Duration

	mu    sync.RWMutex
	idx   *Index
	built time.Time
	sf    singleflight.Group

	// loadTimeout bounds a catalog load. Loads run detached from the
	// caller so that one cancelled batch does not fail the others
	// sharing the flight.
	loadTimeout time.Duration

	now func() time.Time
}

// DefaultLoadTimeout bounds a single catalog load.
const DefaultLoadTimeout = 30 * time.Second

// NewCatalogCache wraps a catalog. A zero TTL disables caching and every
// call reloads the catalog.
func NewCatalogCache(catalog Catalog, ttl time.Duration) *CatalogCache {
	return &CatalogCache{catalog: catalog, ttl: ttl, loadTimeout: DefaultLoadTimeout, now: time.Now}
}

// Name returns the underlying catalog name.
func (c *CatalogCache) Name() string {
	return c.catalog.Name()
}

func (c *CatalogCache) expiredLocked() bool {
	if c.ttl == 0 || c.idx == nil {
		return true
	}
	return c.now().Sub(c.built) > c.ttl
}

// Index implements IndexSource.
func (c *CatalogCache) Index(ctx context.Context) (*Index, error) {
	c.mu.RLock()
	if !c.expiredLocked() {
		idx := c.idx
		c.mu.RUnlock()
		return idx, nil
	}
	c.mu.RUnlock()

	ch := c.sf.DoChan("catalog", func() (interface{}, error) {
		// Another caller may have refreshed while we waited.
		c.mu.RLock()
		if !c.expiredLocked() {
			idx := c.idx
			c.mu.RUnlock()
			return idx, nil
		}
		c.mu.RUnlock()

		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		materials, err := c.catalog.Materials(loadCtx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCatalogUnavailable, c.catalog.Name(), err)
		}
		idx := BuildIndex(materials)

		c.mu.Lock()
		c.idx = idx
		c.built = c.now()
		c.mu.Unlock()

		return idx, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Index), nil
	}
}

// Invalidate drops the cached index.
func (c *CatalogCache) Invalidate() {
	c.mu.Lock()
	c.idx = nil
	c.mu.Unlock()
}
