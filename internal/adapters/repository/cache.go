package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/poprzeczka/internal/domain/model"
	"github.com/okian/poprzeczka/pkg/metrics"
)

const defaultCacheTTL = 30 * time.Second

type cached struct {
	table   model.Table
	fetched time.Time
}

// CachedStore puts a short-lived read cache in front of a Store. An append
// through the cache drops the cached copy of that sheet, so a caller that
// appends and then reads sees its own write.
type CachedStore struct {
	next Store
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cached
	gens    map[string]uint64 // bumped on every invalidation
}

// NewCachedStore wraps next with a TTL read cache.
func NewCachedStore(next Store, opts ...Option) *CachedStore {
	c := &CachedStore{
		next:    next,
		ttl:     defaultCacheTTL,
		now:     time.Now,
		entries: make(map[string]cached),
		gens:    make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReadAll implements Store. Errors are not cached, and neither is a read that
// raced with an invalidation of the same sheet.
func (c *CachedStore) ReadAll(ctx context.Context, sheet string) (model.Table, error) {
	c.mu.Lock()
	e, ok := c.entries[sheet]
	gen := c.gens[sheet]
	c.mu.Unlock()
	if ok && c.now().Sub(e.fetched) < c.ttl {
		metrics.RecordCacheLookup(true)
		return clone(e.table), nil
	}
	metrics.RecordCacheLookup(false)

	t, err := c.next.ReadAll(ctx, sheet)
	if err != nil {
		return model.Table{}, err
	}
	if c.ttl > 0 {
		c.mu.Lock()
		if c.gens[sheet] == gen {
			c.entries[sheet] = cached{table: t, fetched: c.now()}
		}
		c.mu.Unlock()
	}
	return clone(t), nil
}

// Append implements Store.
func (c *CachedStore) Append(ctx context.Context, sheet string, row []string) error {
	defer c.Invalidate(sheet)
	return c.next.Append(ctx, sheet, row)
}

// EnsureSheet implements Store.
func (c *CachedStore) EnsureSheet(ctx context.Context, sheet string, headers []string) error {
	defer c.Invalidate(sheet)
	return c.next.EnsureSheet(ctx, sheet, headers)
}

// Invalidate drops the cached copy of sheet.
func (c *CachedStore) Invalidate(sheet string) {
	c.mu.Lock()
	delete(c.entries, sheet)
	c.gens[sheet]++
	c.mu.Unlock()
}

func clone(t model.Table) model.Table {
	out := model.Table{Headers: slices.Clone(t.Headers), Rows: make([][]string, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = slices.Clone(r)
	}
	return out
}
