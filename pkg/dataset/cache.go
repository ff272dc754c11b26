package dataset

import (
	"context"
	"fmt"

	"github.com/NotCoffee418/building_energy_monitor/pkg/generator"
	"github.com/NotCoffee418/building_energy_monitor/pkg/types"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize bounds how many datasets are kept at once.
const DefaultCacheSize = 4

// Cache keeps the most recently used datasets by parameter key. Concurrent
// requests for the same key share a single build, and later requests get the
// same *Dataset until it is evicted.
type Cache struct {
	rates types.Rates
	log   zerolog.Logger
	obs   Observer

	byKey *lru.Cache[string, *Dataset]
	group singleflight.Group
}

// NewCache holds at most size datasets; a size below 1 uses DefaultCacheSize.
func NewCache(rates types.Rates, size int, log zerolog.Logger, obs Observer) *Cache {
	if size < 1 {
		size = DefaultCacheSize
	}
	c := &Cache{
		rates: rates,
		log:   log,
		obs:   obs,
	}
	byKey, err := lru.NewWithEvict(size, func(_ string, ds *Dataset) {
		c.log.Debug().Uint16("fingerprint", ds.Fingerprint).Msg("dataset evicted")
	})
	if err != nil {
		// only returned for a non-positive size
		panic(fmt.Sprintf("dataset cache: %v", err))
	}
	c.byKey = byKey
	return c
}

// Get returns the dataset for p, building it if needed. A shared build is not
// cancelled when one of its callers goes away; each caller only stops waiting
// when its own ctx is done.
func (c *Cache) Get(ctx context.Context, p generator.Params) (*Dataset, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	key := p.Key()

	if ds, ok := c.byKey.Get(key); ok {
		if c.obs != nil {
			c.obs.CacheHit()
		}
		c.log.Debug().Uint16("fingerprint", ds.Fingerprint).Msg("dataset cache hit")
		return ds, nil
	}
	if c.obs != nil {
		c.obs.CacheMiss()
	}

	buildCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if existing, ok := c.byKey.Get(key); ok {
			return existing, nil
		}

		ds, err := Build(buildCtx, p, c.rates)
		if err != nil {
			return nil, err
		}
		c.byKey.Add(key, ds)

		if c.obs != nil {
			c.obs.Built(len(ds.Samples), ds.BuildTime)
		}
		c.log.Info().
			Int("samples", len(ds.Samples)).
			Int("daily_rollups", len(ds.Daily)).
			Uint16("fingerprint", ds.Fingerprint).
			Dur("took", ds.BuildTime).
			Msg("dataset built")
		return ds, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Forget drops a cached dataset so the next Get builds it again.
func (c *Cache) Forget(p generator.Params) {
	key := p.Key()
	c.byKey.Remove(key)
	c.group.Forget(key)
}

func (c *Cache) Len() int {
	return c.byKey.Len()
}
