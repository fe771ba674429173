package prediction

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/flightcast/flightcast/internal/flight"
	"github.com/flightcast/flightcast/internal/pipeline"
)

// labelCache memoizes pipeline labels per validated request. The fitted
// pipeline is deterministic, so a hit returns what the pipeline would.
// A nil *labelCache is a disabled cache.
type labelCache struct {
	ttl   time.Duration
	items *cache.Cache
}

func newLabelCache(ttl time.Duration) *labelCache {
	if ttl <= 0 {
		return nil
	}
	return &labelCache{
		ttl:   ttl,
		items: cache.New(ttl, 2*ttl),
	}
}

func (c *labelCache) get(req flight.Request) (pipeline.Label, bool) {
	if c == nil {
		return 0, false
	}
	v, found := c.items.Get(cacheKey(req))
	if !found {
		return 0, false
	}
	label, ok := v.(pipeline.Label)
	return label, ok
}

func (c *labelCache) set(req flight.Request, label pipeline.Label) {
	if c == nil {
		return
	}
	c.items.Set(cacheKey(req), label, c.ttl)
}

func (c *labelCache) len() int {
	if c == nil {
		return 0
	}
	return c.items.ItemCount()
}

// cacheKey identifies everything the encoder reads from a request.
func cacheKey(req flight.Request) string {
	return req.DateString() + "|" + req.Departure.String() + "|" + req.Arrival.String() +
		"|" + req.Origin + "|" + req.Destination
}
