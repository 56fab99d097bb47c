package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/leapstack-labs/datareport/internal/report"
	"github.com/leapstack-labs/datareport/internal/store"
)

// DefaultCacheTTL is how long a loaded report stays in memory.
const DefaultCacheTTL = 10 * time.Minute

// Catalog is the report storage the handlers work against. *store.Store implements it.
type Catalog interface {
	Save(ctx context.Context, rec *store.Record) error
	Get(ctx context.Context, id string) (*store.Record, error)
	List(ctx context.Context, opts store.ListOptions) ([]store.Record, error)
	Delete(ctx context.Context, id string) error
}

type loadedReport struct {
	record *store.Record
	input  *report.Input
}

// reportCache keeps prepared report inputs in front of the catalog. Stored summaries
// never change, so entries only go away on expiry or deletion.
type reportCache struct {
	catalog Catalog
	items   *cache.Cache
	opts    Options
}

func newReportCache(catalog Catalog, opts Options) *reportCache {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &reportCache{catalog: catalog, items: cache.New(ttl, 2*ttl), opts: opts}
}

func (c *reportCache) load(ctx context.Context, id string) (*loadedReport, error) {
	if v, ok := c.items.Get(id); ok {
		return v.(*loadedReport), nil
	}
	rec, err := c.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in, err := report.NewInput(rec.ID, rec.Summary, c.opts.Filters, c.opts.Dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare report %s: %w", id, err)
	}
	loaded := &loadedReport{record: rec, input: in}
	c.items.Set(id, loaded, cache.DefaultExpiration)
	return loaded, nil
}

func (c *reportCache) forget(id string) {
	c.items.Delete(id)
}

func (c *reportCache) len() int {
	return c.items.ItemCount()
}
