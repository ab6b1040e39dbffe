package metadata

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru"

	"github.com/litescript/ls-skymap/internal/logging"
)

// DefaultCacheSize holds every IAU constellation.
const DefaultCacheSize = 128

// Cached wraps a Gateway with an in-memory LRU and an optional on-disk Store.
// Lookups go memory, then disk, then upstream; upstream results are written
// back to both.
type Cached struct {
	upstream Gateway
	mem      *lru.Cache
	store    *Store
	log      *logging.Logger
}

// NewCached creates a caching gateway. store may be nil.
func NewCached(upstream Gateway, size int, store *Store, log *logging.Logger) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	mem, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Cached{upstream: upstream, mem: mem, store: store, log: log}, nil
}

// Name implements Gateway.
func (c *Cached) Name() string {
	return "cached " + c.upstream.Name()
}

// Fetch implements Gateway.
func (c *Cached) Fetch(ctx context.Context, name string) (Record, error) {
	if v, ok := c.mem.Get(name); ok {
		return v.(Record), nil
	}

	if c.store != nil {
		rec, err := c.store.Get(ctx, name)
		if err == nil {
			c.mem.Add(name, rec)
			return rec, nil
		}
		if !errors.Is(err, ErrNotFound) {
			c.log.Warn("metadata cache: %v", err)
		}
	}

	rec, err := c.upstream.Fetch(ctx, name)
	if err != nil {
		return Record{}, err
	}
	c.mem.Add(name, rec)
	if c.store != nil {
		if err := c.store.Put(ctx, rec); err != nil {
			c.log.Warn("metadata cache: %v", err)
		}
	}
	return rec, nil
}

// Len returns the number of records held in memory.
func (c *Cached) Len() int {
	return c.mem.Len()
}
