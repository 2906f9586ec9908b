package sheet

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// LoadFunc produces a freshly loaded dataset.
type LoadFunc func(ctx context.Context) (*Dataset, error)

// Cache memoizes the dataset for the life of the process. Concurrent first
// loads share a single call to the load function; a failed load is not
// cached, so the next call tries again.
// It is safe for concurrent use.
type Cache struct {
	load  LoadFunc
	group singleflight.Group

	mu      sync.RWMutex
	dataset *Dataset
	// generation increments on every Invalidate. A load only stores its
	// dataset if no invalidation happened while it ran.
	generation uint64
}

// NewCache creates a Cache backed by load.
func NewCache(load LoadFunc) *Cache {
	return &Cache{load: load}
}

// Load returns the cached dataset, loading it on first use.
//
// The shared load runs detached from the caller's cancellation, so one
// caller giving up does not fail the others waiting on it. Each caller still
// returns as soon as its own ctx is done. The load itself is bounded by the
// source's own timeout.
func (c *Cache) Load(ctx context.Context) (*Dataset, error) {
	if ds := c.Cached(); ds != nil {
		log.Debug().
			Str("source", "cache").
			Int("records", ds.Len()).
			Time("loaded_at", ds.LoadedAt).
			Msg("Using cached dataset")
		return ds, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("dataset", func() (interface{}, error) {
		c.mu.RLock()
		ds, gen := c.dataset, c.generation
		c.mu.RUnlock()
		// Another flight may have finished between the check above and here.
		if ds != nil {
			return ds, nil
		}

		start := time.Now()
		ds, err := c.load(loadCtx)
		if err != nil {
			log.Error().Err(err).Dur("duration", time.Since(start)).Msg("Failed to load dataset")
			return nil, err
		}
		if ds == nil {
			ds = NewDataset(nil, nil)
		}

		c.mu.Lock()
		stored := c.generation == gen
		if stored {
			c.dataset = ds
		}
		c.mu.Unlock()

		log.Info().
			Str("source", "network").
			Int("records", ds.Len()).
			Str("id_column", ds.IDColumn).
			Bool("cached", stored).
			Dur("duration", time.Since(start)).
			Msg("Dataset loaded")
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug().Msg("Dataset load shared with a concurrent caller")
		}
		return res.Val.(*Dataset), nil
	}
}

// Cached returns the memoized dataset without loading, or nil.
func (c *Cache) Cached() *Dataset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dataset
}

// Invalidate drops the memoized dataset so the next Load fetches again. A
// load already in flight still answers its callers but does not repopulate
// the cache.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.dataset = nil
	c.generation++
	c.mu.Unlock()
	log.Debug().Msg("Dataset cache invalidated")
}

// ExpireEvery invalidates the cache every interval until ctx is done. The
// next Load after each tick fetches a fresh dataset. A non-positive interval
// returns immediately.
func (c *Cache) ExpireEvery(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Invalidate()
		}
	}
}
